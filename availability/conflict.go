package availability

import (
	"time"

	"carrental-backend/models"
)

// Overlaps is the half-open interval test on full timestamps. Bookings
// that merely touch (one's dropoff equals the other's pickup) do not
// overlap, so same-day turnarounds are never a conflict.
func Overlaps(a, b models.Booking) bool {
	return a.PickupAt.Before(b.DropoffAt) && b.PickupAt.Before(a.DropoffAt)
}

// ActiveBookings drops cancelled bookings. It is the only place the engine
// decides which bookings take part in status and conflict logic.
func ActiveBookings(bookings []models.Booking) []models.Booking {
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		out = append(out, b)
	}
	return out
}

// OverlapDays returns the first and last rental day shared by two
// overlapping bookings: from the day of the later pickup through the day
// before the earlier dropoff, and never less than that first day.
func OverlapDays(a, b models.Booking, loc *time.Location) (time.Time, time.Time) {
	start := a.PickupAt
	if b.PickupAt.After(start) {
		start = b.PickupAt
	}
	end := a.DropoffAt
	if b.DropoffAt.Before(end) {
		end = b.DropoffAt
	}

	from := Day(start, loc)
	to := Day(end, loc).AddDate(0, 0, -1)
	if to.Before(from) {
		to = from
	}
	return from, to
}

// HasConflict reports whether two or more non-cancelled bookings among
// those touching day overlap on that day.
//
// This is a pairwise comparison, O(n²) in n = bookings touching this one
// day for this one vehicle; the engine calls it once per day, so the cost
// never grows with the length of the queried range beyond linear.
func HasConflict(day time.Time, bookings []models.Booking, loc *time.Location) bool {
	day = DateOf(day, loc)
	active := ActiveBookings(bookings)
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			if conflictsOn(active[i], active[j], day, loc) {
				return true
			}
		}
	}
	return false
}

func conflictsOn(a, b models.Booking, day time.Time, loc *time.Location) bool {
	if a.ID != 0 && a.ID == b.ID {
		return false
	}
	if !Overlaps(a, b) {
		return false
	}
	from, to := OverlapDays(a, b, loc)
	return !day.Before(from) && !day.After(to)
}

// ConflictPairs lists every pair of non-cancelled bookings that overlap,
// ordered by the first booking's pickup. Callers use it to explain why a
// day is flagged.
func ConflictPairs(bookings []models.Booking) [][2]models.Booking {
	active := ActiveBookings(bookings)
	sortBookings(active)

	var pairs [][2]models.Booking
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.ID != 0 && a.ID == b.ID {
				continue
			}
			if Overlaps(a, b) {
				pairs = append(pairs, [2]models.Booking{a, b})
			}
		}
	}
	return pairs
}
