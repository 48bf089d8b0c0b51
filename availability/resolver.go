package availability

import (
	"time"

	"carrental-backend/models"
)

// ResolveStatus maps one day's bookings and notes to exactly one status.
//
// Priority, highest first:
//
//	blocked > maintenance > out_on_rent > reserved > returned > available
//
// General notes and cancelled bookings never change the result. Items that
// do not actually cover day are ignored, so callers may pass an unfiltered
// window. The function is total: empty input yields StatusAvailable.
func ResolveStatus(day time.Time, bookings []models.Booking, notes []models.CalendarNote, loc *time.Location) DayStatus {
	day = DateOf(day, loc)

	maintenance := false
	for _, n := range notes {
		if !NoteCovers(n, day, loc) {
			continue
		}
		switch n.NoteType {
		case models.NoteBlocked:
			return StatusBlocked
		case models.NoteMaintenance:
			maintenance = true
		}
	}
	if maintenance {
		return StatusMaintenance
	}

	var rented, reserved, returned bool
	for _, b := range bookings {
		if b.Status == models.BookingCancelled || !Touches(b, day, loc) {
			continue
		}
		switch b.Status {
		case models.BookingActive, models.BookingConfirmed:
			rented = true
		case models.BookingPending:
			reserved = true
		case models.BookingCompleted:
			if Day(b.DropoffAt, loc).Equal(day) {
				returned = true
			}
		}
	}

	switch {
	case rented:
		return StatusOutOnRent
	case reserved:
		return StatusReserved
	case returned:
		return StatusReturned
	}
	return StatusAvailable
}
