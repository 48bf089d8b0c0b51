// Package availability derives a per-day status for every vehicle in the
// fleet from its bookings and calendar notes, and flags double bookings.
//
// Everything in this package is read-only over its inputs: the same
// bookings and notes always produce the same DayInfo sequence.
package availability

import (
	"encoding/json"
	"errors"
	"time"

	"carrental-backend/models"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

// DayStatus is the single authoritative label of one (vehicle, day) cell.
type DayStatus string

const (
	StatusAvailable   DayStatus = "available"
	StatusReserved    DayStatus = "reserved"
	StatusOutOnRent   DayStatus = "out_on_rent"
	StatusReturned    DayStatus = "returned"
	StatusMaintenance DayStatus = "maintenance"
	StatusBlocked     DayStatus = "blocked"
)

// DayInfo is the engine's output unit, one per vehicle per calendar day.
// Bookings includes cancelled bookings for display; they never influence
// Status or HasConflict.
type DayInfo struct {
	VehicleID   uint                  `json:"vehicleId"`
	Date        time.Time             `json:"-"`
	Status      DayStatus             `json:"status"`
	Bookings    []models.Booking      `json:"bookings"`
	Notes       []models.CalendarNote `json:"notes"`
	HasConflict bool                  `json:"hasConflict"`
}

func (d DayInfo) MarshalJSON() ([]byte, error) {
	type plain DayInfo
	return json.Marshal(struct {
		Date string `json:"date"`
		plain
	}{
		Date:  d.Date.Format(DateLayout),
		plain: plain(d),
	})
}

func (d *DayInfo) UnmarshalJSON(data []byte) error {
	type plain DayInfo
	var aux struct {
		Date string `json:"date"`
		plain
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, aux.Date)
	if err != nil {
		return err
	}
	*d = DayInfo(aux.plain)
	d.Date = date
	return nil
}

// VehicleCalendar groups the days computed for one vehicle. When Err is set
// Days is empty: a vehicle is never returned half-populated.
type VehicleCalendar struct {
	VehicleID uint      `json:"vehicleId"`
	Days      []DayInfo `json:"days"`
	Err       error     `json:"-"`
}

// Result is the outcome of one engine query.
type Result struct {
	Start    time.Time
	End      time.Time
	Vehicles []VehicleCalendar
}

// Days flattens the successful vehicle calendars, grouped by vehicle in
// query order and ascending by date within each vehicle.
func (r Result) Days() []DayInfo {
	n := 0
	for _, vc := range r.Vehicles {
		n += len(vc.Days)
	}
	out := make([]DayInfo, 0, n)
	for _, vc := range r.Vehicles {
		if vc.Err != nil {
			continue
		}
		out = append(out, vc.Days...)
	}
	return out
}

// Err joins the per-vehicle errors, or returns nil when every vehicle
// was computed.
func (r Result) Err() error {
	var errs []error
	for _, vc := range r.Vehicles {
		if vc.Err != nil {
			errs = append(errs, vc.Err)
		}
	}
	return errors.Join(errs...)
}

// Day truncates a timestamp to the calendar day it falls on in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateOf reinterprets a date value (its year, month and day as written)
// as midnight in loc. Unlike Day it performs no zone conversion, so a
// DATE column scanned in another zone keeps its calendar day.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EachDay lists the calendar days in [start, end], both inclusive.
func EachDay(start, end time.Time) []time.Time {
	days := make([]time.Time, 0, DaysBetween(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween counts the calendar days in [start, end], both inclusive.
// It returns 0 when end is before start.
func DaysBetween(start, end time.Time) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Touches reports whether booking b occupies day for display purposes:
// every day from the pickup date through the dropoff date, inclusive.
func Touches(b models.Booking, day time.Time, loc *time.Location) bool {
	return !day.Before(Day(b.PickupAt, loc)) && !day.After(Day(b.DropoffAt, loc))
}

// NoteCovers reports whether note n covers day.
func NoteCovers(n models.CalendarNote, day time.Time, loc *time.Location) bool {
	return !day.Before(DateOf(n.Start(), loc)) && !day.After(DateOf(n.End(), loc))
}
