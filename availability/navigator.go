package availability

import (
	"strings"
	"time"

	"carrental-backend/models"
)

// ViewMode is the span of one calendar page.
type ViewMode string

const (
	ViewDay     ViewMode = "day"
	ViewWeek    ViewMode = "week"
	ViewMonth   ViewMode = "month"
	ViewQuarter ViewMode = "quarter"
)

// ParseViewMode accepts the mode names case-insensitively.
func ParseViewMode(s string) (ViewMode, bool) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewDay, ViewWeek, ViewMonth, ViewQuarter:
		return m, true
	}
	return "", false
}

// Navigator holds calendar paging state. It only turns that state into a
// [start, end] window and a vehicle filter; it knows nothing about
// bookings.
type Navigator struct {
	Anchor    time.Time
	Mode      ViewMode
	Search    string
	WeekStart time.Weekday
	loc       *time.Location
}

func NewNavigator(anchor time.Time, mode ViewMode, weekStart time.Weekday, loc *time.Location) *Navigator {
	if loc == nil {
		loc = time.UTC
	}
	if _, ok := ParseViewMode(string(mode)); !ok {
		mode = ViewMonth
	}
	return &Navigator{
		Anchor:    DateOf(anchor, loc),
		Mode:      mode,
		WeekStart: weekStart,
		loc:       loc,
	}
}

func (n *Navigator) Month() time.Month { return n.Anchor.Month() }
func (n *Navigator) Year() int         { return n.Anchor.Year() }

// Window returns the inclusive day range of the current page.
func (n *Navigator) Window() (time.Time, time.Time) {
	a := n.Anchor
	switch n.Mode {
	case ViewDay:
		return a, a
	case ViewWeek:
		offset := (int(a.Weekday()) - int(n.WeekStart) + 7) % 7
		start := a.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case ViewQuarter:
		start := quarterStart(a)
		return start, start.AddDate(0, 3, -1)
	default:
		start := monthStart(a)
		return start, start.AddDate(0, 1, -1)
	}
}

func (n *Navigator) NextPeriod() { n.shift(1) }
func (n *Navigator) PrevPeriod() { n.shift(-1) }

func (n *Navigator) shift(dir int) {
	switch n.Mode {
	case ViewDay:
		n.Anchor = n.Anchor.AddDate(0, 0, dir)
	case ViewWeek:
		n.Anchor = n.Anchor.AddDate(0, 0, 7*dir)
	case ViewQuarter:
		// Normalise first: Jan 31 + 3 months would otherwise roll into May.
		n.Anchor = quarterStart(n.Anchor).AddDate(0, 3*dir, 0)
	default:
		n.Anchor = monthStart(n.Anchor).AddDate(0, dir, 0)
	}
}

// GoToToday moves the anchor so the window contains now.
func (n *Navigator) GoToToday(now time.Time) {
	n.Anchor = Day(now, n.loc)
}

// SetViewMode switches the page span around the current anchor. Unknown
// modes are ignored.
func (n *Navigator) SetViewMode(mode ViewMode) {
	if m, ok := ParseViewMode(string(mode)); ok {
		n.Mode = m
	}
}

func (n *Navigator) SetSearchFilter(text string) {
	n.Search = strings.TrimSpace(text)
}

// FilterVehicles returns the ids of vehicles whose display name contains
// the search text, ignoring case. An empty search keeps every vehicle.
func (n *Navigator) FilterVehicles(vehicles []models.Vehicle) []uint {
	return FilterVehicles(vehicles, n.Search)
}

// FilterVehicles is the navigator's name filter for callers that page
// with an explicit window instead.
func FilterVehicles(vehicles []models.Vehicle, search string) []uint {
	q := strings.ToLower(strings.TrimSpace(search))
	ids := make([]uint, 0, len(vehicles))
	for _, v := range vehicles {
		if q == "" || strings.Contains(strings.ToLower(v.DisplayName), q) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func quarterStart(t time.Time) time.Time {
	m := ((int(t.Month())-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, t.Location())
}
