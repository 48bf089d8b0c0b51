package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/datatypes"

	"carrental-backend/models"
)

// maxNoteOccurrences caps one note's expansion inside a single window.
const maxNoteOccurrences = 1000

// civil drops the zone of a date value, keeping its calendar day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseNoteRule(raw string) (*rrule.RRule, error) {
	r, err := rrule.StrToRRule(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: rrule %q: %v", ErrInvalidNote, raw, err)
	}
	return r, nil
}

// ExpandNote returns the occurrences of n touching the inclusive day range
// [from, to]. A note without a rule is its own single occurrence. Each
// occurrence of a recurring note spans as many days as StartDate..EndDate,
// starting on the dates the rule yields from StartDate onwards and never
// after RepeatUntil.
func ExpandNote(n models.CalendarNote, from, to time.Time) ([]models.CalendarNote, error) {
	from, to = civil(from), civil(to)
	start, end := civil(n.Start()), civil(n.End())

	if strings.TrimSpace(n.RRule) == "" {
		if start.After(to) || end.Before(from) {
			return nil, nil
		}
		return []models.CalendarNote{n}, nil
	}

	r, err := parseNoteRule(n.RRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(start)

	spanDays := int(end.Sub(start).Hours() / 24)
	// An occurrence starting up to spanDays before from still covers it.
	windowStart := from.AddDate(0, 0, -spanDays)
	windowEnd := to
	if n.RepeatUntil != nil {
		if until := civil(time.Time(*n.RepeatUntil)); until.Before(windowEnd) {
			windowEnd = until
		}
	}
	if windowEnd.Before(windowStart) {
		return nil, nil
	}

	starts := r.Between(windowStart, windowEnd, true)
	if len(starts) > maxNoteOccurrences {
		log.Printf("⚠️  note %d: %d occurrences truncated to %d", n.ID, len(starts), maxNoteOccurrences)
		starts = starts[:maxNoteOccurrences]
	}

	out := make([]models.CalendarNote, 0, len(starts))
	for _, s := range starts {
		occ := n
		occStart := civil(s)
		occ.StartDate = datatypes.Date(occStart)
		occ.EndDate = datatypes.Date(occStart.AddDate(0, 0, spanDays))
		out = append(out, occ)
	}
	return out, nil
}

// expandNotes flattens every note's occurrences. A note whose rule no
// longer parses is kept as a single occurrence so it stays visible.
func expandNotes(notes []models.CalendarNote, from, to time.Time) []models.CalendarNote {
	out := make([]models.CalendarNote, 0, len(notes))
	for _, n := range notes {
		occ, err := ExpandNote(n, from, to)
		if err != nil {
			log.Printf("⚠️  note %d: %v", n.ID, err)
			n.RRule = ""
			occ, _ = ExpandNote(n, from, to)
		}
		out = append(out, occ...)
	}
	return out
}
