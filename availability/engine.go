package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"carrental-backend/models"
)

// AllVehicles asks a source for every vehicle instead of a single one.
const AllVehicles uint = 0

// BookingSource supplies bookings. from and to are calendar days (midnight
// in the engine's location) and the range is inclusive; implementations
// must return every booking whose interval touches it, cancelled included.
// A source that does not know vehicleID returns an error wrapping
// ErrUnknownVehicle.
type BookingSource interface {
	GetBookings(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.Booking, error)
}

// NoteSource supplies calendar notes under the same range contract as
// BookingSource.
type NoteSource interface {
	GetNotes(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.CalendarNote, error)
}

// Fleet lists the vehicles a query for "all" expands to.
type Fleet interface {
	VehicleIDs(ctx context.Context) ([]uint, error)
}

// Query selects vehicles and an inclusive day range. An empty VehicleIDs
// means every vehicle in the fleet.
type Query struct {
	VehicleIDs []uint
	Start      time.Time
	End        time.Time
}

// Engine computes DayInfo sequences. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	bookings    BookingSource
	notes       NoteSource
	fleet       Fleet
	loc          *time.Location
	parallelism  int
	maxRangeDays int
}

type Option func(*Engine)

// WithLocation sets the zone whose midnights delimit calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithParallelism computes up to n vehicles at once. Output order does not
// depend on n.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// DefaultMaxRangeDays bounds a query window unless WithMaxRangeDays says
// otherwise. A quarter page is at most 92 days.
const DefaultMaxRangeDays = 366

// WithMaxRangeDays rejects windows longer than n days with ErrInvalidRange.
func WithMaxRangeDays(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRangeDays = n
		}
	}
}

func NewEngine(bookings BookingSource, notes NoteSource, fleet Fleet, opts ...Option) *Engine {
	e := &Engine{
		bookings:     bookings,
		notes:        notes,
		fleet:        fleet,
		loc:          time.UTC,
		parallelism:  1,
		maxRangeDays: DefaultMaxRangeDays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the zone calendar days are computed in.
func (e *Engine) Location() *time.Location { return e.loc }

// Compute produces one DayInfo per vehicle per day of q.
//
// An inverted range is rejected with ErrInvalidRange before any source is
// called. Source failures are recorded per vehicle on VehicleCalendar.Err
// and never abort the other vehicles; the returned error is reserved for
// failures that affect the whole query.
func (e *Engine) Compute(ctx context.Context, q Query) (Result, error) {
	start, end, err := e.Window(q)
	if err != nil {
		return Result{}, err
	}

	ids := q.VehicleIDs
	if len(ids) == 0 {
		if e.fleet == nil {
			return Result{}, fmt.Errorf("%w: no fleet configured", ErrSourceUnavailable)
		}
		ids, err = e.fleet.VehicleIDs(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("%w: list vehicles: %v", ErrSourceUnavailable, err)
		}
	}

	res := Result{Start: start, End: end, Vehicles: make([]VehicleCalendar, len(ids))}

	if e.parallelism <= 1 || len(ids) < 2 {
		for i, id := range ids {
			res.Vehicles[i] = e.computeVehicle(ctx, id, start, end)
		}
		return res, nil
	}

	// Each goroutine owns one slot of res.Vehicles, so no locking is needed.
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res.Vehicles[i] = e.computeVehicle(ctx, id, start, end)
			return nil
		})
	}
	_ = g.Wait()
	return res, nil
}

// Window normalises q's bounds to calendar days in the engine's location
// and rejects an inverted range or one longer than the engine's limit.
func (e *Engine) Window(q Query) (time.Time, time.Time, error) {
	start := DateOf(q.Start, e.loc)
	end := DateOf(q.End, e.loc)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}
	if last := start.AddDate(0, 0, e.maxRangeDays-1); end.After(last) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s to %s is longer than %d days",
			ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout), e.maxRangeDays)
	}
	return start, end, nil
}

// MaxRangeDays is the longest window Compute accepts.
func (e *Engine) MaxRangeDays() int { return e.maxRangeDays }

func (e *Engine) computeVehicle(ctx context.Context, vehicleID uint, start, end time.Time) VehicleCalendar {
	vc := VehicleCalendar{VehicleID: vehicleID}
	if vehicleID == AllVehicles {
		vc.Err = &VehicleError{VehicleID: vehicleID, ErrCode: CodeUnknownVehicle, Cause: errors.New("vehicle id 0 is reserved")}
		return vc
	}
	if err := ctx.Err(); err != nil {
		vc.Err = classify(vehicleID, err)
		return vc
	}

	bookings, err := e.bookings.GetBookings(ctx, vehicleID, start, end)
	if err != nil {
		vc.Err = classify(vehicleID, fmt.Errorf("get bookings: %w", err))
		return vc
	}
	notes, err := e.notes.GetNotes(ctx, vehicleID, start, end)
	if err != nil {
		vc.Err = classify(vehicleID, fmt.Errorf("get notes: %w", err))
		return vc
	}

	bookings = bookingsFor(vehicleID, bookings)
	notes = notesFor(vehicleID, notes)
	sortBookings(bookings)
	sortNotes(notes)

	window := EachDay(start, end)
	days := make([]DayInfo, 0, len(window))
	for _, day := range window {
		days = append(days, ComputeDay(vehicleID, day, bookings, notes, e.loc))
	}
	vc.Days = days
	return vc
}

// ComputeDay builds the DayInfo for a single vehicle and day from that
// vehicle's bookings and notes. Items not touching day are left out.
func ComputeDay(vehicleID uint, day time.Time, bookings []models.Booking, notes []models.CalendarNote, loc *time.Location) DayInfo {
	day = DateOf(day, loc)

	dayBookings := make([]models.Booking, 0)
	for _, b := range bookings {
		if Touches(b, day, loc) {
			dayBookings = append(dayBookings, b)
		}
	}
	dayNotes := make([]models.CalendarNote, 0)
	for _, n := range notes {
		if NoteCovers(n, day, loc) {
			dayNotes = append(dayNotes, n)
		}
	}

	return DayInfo{
		VehicleID:   vehicleID,
		Date:        day,
		Status:      ResolveStatus(day, dayBookings, dayNotes, loc),
		Bookings:    dayBookings,
		Notes:       dayNotes,
		HasConflict: HasConflict(day, dayBookings, loc),
	}
}

// bookingsFor keeps only the vehicle's own bookings; a source answering
// with a wider set must not leak other vehicles into this calendar.
func bookingsFor(vehicleID uint, in []models.Booking) []models.Booking {
	out := make([]models.Booking, 0, len(in))
	for _, b := range in {
		if b.VehicleID == vehicleID {
			out = append(out, b)
		}
	}
	return out
}

func notesFor(vehicleID uint, in []models.CalendarNote) []models.CalendarNote {
	out := make([]models.CalendarNote, 0, len(in))
	for _, n := range in {
		if n.VehicleID == vehicleID {
			out = append(out, n)
		}
	}
	return out
}

func sortBookings(bs []models.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].PickupAt.Equal(bs[j].PickupAt) {
			return bs[i].PickupAt.Before(bs[j].PickupAt)
		}
		return bs[i].ID < bs[j].ID
	})
}

func sortNotes(ns []models.CalendarNote) {
	sort.SliceStable(ns, func(i, j int) bool {
		si, sj := ns[i].Start(), ns[j].Start()
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return ns[i].ID < ns[j].ID
	})
}
