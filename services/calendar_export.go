package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"carrental-backend/availability"
	"carrental-backend/models"
)

var csvHeader = []string{"vehicle_id", "date", "status", "has_conflict", "booking_refs", "notes"}

func bookingRef(b models.Booking) string {
	if b.ReferenceCode != "" {
		return b.ReferenceCode
	}
	return "#" + strconv.FormatUint(uint64(b.ID), 10)
}

// WriteAvailabilityCSV writes one row per DayInfo, in the order given.
func WriteAvailabilityCSV(w io.Writer, days []availability.DayInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range days {
		refs := make([]string, 0, len(d.Bookings))
		for _, b := range d.Bookings {
			refs = append(refs, bookingRef(b))
		}
		notes := make([]string, 0, len(d.Notes))
		for _, n := range d.Notes {
			text := string(n.NoteType)
			if n.Text != "" {
				text += ": " + n.Text
			}
			notes = append(notes, text)
		}
		row := []string{
			strconv.FormatUint(uint64(d.VehicleID), 10),
			d.Date.Format(availability.DateLayout),
			string(d.Status),
			strconv.FormatBool(d.HasConflict),
			strings.Join(refs, ";"),
			strings.Join(notes, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func icalStatus(s models.BookingStatus) ical.ObjectStatus {
	switch s {
	case models.BookingPending:
		return ical.ObjectStatusTentative
	case models.BookingCancelled:
		return ical.ObjectStatusCancelled
	}
	return ical.ObjectStatusConfirmed
}

// VehicleICS renders a vehicle's bookings as timed events and its notes
// as all-day events. Recurring notes keep their RRULE so calendar clients
// expand them.
func VehicleICS(v models.Vehicle, bookings []models.Booking, notes []models.CalendarNote, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//carrental-backend//availability//EN")
	cal.SetXWRCalName(v.DisplayName)

	for _, b := range bookings {
		ev := cal.AddEvent(fmt.Sprintf("booking-%d@carrental", b.ID))
		ev.SetDtStampTime(now)
		ev.SetStartAt(b.PickupAt)
		ev.SetEndAt(b.DropoffAt)
		summary := bookingRef(b)
		if b.CustomerName != "" {
			summary += " " + b.CustomerName
		}
		ev.SetSummary(summary)
		ev.SetDescription(fmt.Sprintf("%s, status %s", v.DisplayName, b.Status))
		ev.SetStatus(icalStatus(b.Status))
	}

	for _, n := range notes {
		ev := cal.AddEvent(fmt.Sprintf("note-%d@carrental", n.ID))
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(civil(n.Start()))
		// DTEND of an all-day event is exclusive.
		ev.SetAllDayEndAt(civil(n.End()).AddDate(0, 0, 1))
		summary := strings.ToUpper(string(n.NoteType))
		if n.Text != "" {
			summary += ": " + n.Text
		}
		ev.SetSummary(summary)
		if n.RRule != "" {
			rule := n.RRule
			if n.RepeatUntil != nil && !strings.Contains(strings.ToUpper(rule), "UNTIL=") {
				rule += ";UNTIL=" + civil(time.Time(*n.RepeatUntil)).Format("20060102")
			}
			ev.AddProperty(ical.ComponentPropertyRrule, rule)
		}
	}

	return cal.Serialize()
}
