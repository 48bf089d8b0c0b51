package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NoteType classifies a calendar note. Only maintenance and blocked notes
// change a day's status.
type NoteType string

const (
	NoteMaintenance NoteType = "maintenance"
	NoteBlocked     NoteType = "blocked"
	NoteGeneral     NoteType = "general"
)

func (t NoteType) Valid() bool {
	switch t {
	case NoteMaintenance, NoteBlocked, NoteGeneral:
		return true
	}
	return false
}

// CalendarNote is an administrator-entered annotation covering the
// inclusive day range [StartDate, EndDate] for one vehicle.
type CalendarNote struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VehicleID uint           `gorm:"column:vehicle_id;index;not null" json:"vehicleId"`
	StartDate datatypes.Date `gorm:"column:start_date;index;not null" json:"startDate"`
	EndDate   datatypes.Date `gorm:"column:end_date;index;not null" json:"endDate"`
	NoteType  NoteType       `gorm:"column:note_type;size:32" json:"noteType"`
	Text      string         `gorm:"column:text;type:text" json:"text"`

	// RRule optionally repeats the note (RFC 5545, e.g. "FREQ=WEEKLY;BYDAY=MO").
	// Each occurrence spans the same number of days as StartDate..EndDate.
	RRule string `gorm:"column:rrule;size:255" json:"rrule,omitempty"`
	// RepeatUntil bounds the recurrence; nil repeats indefinitely.
	RepeatUntil *datatypes.Date `gorm:"column:repeat_until" json:"repeatUntil,omitempty"`
}

// Start returns StartDate as a time.Time.
func (n CalendarNote) Start() time.Time { return time.Time(n.StartDate) }

// End returns EndDate as a time.Time, falling back to StartDate when unset.
func (n CalendarNote) End() time.Time {
	end := time.Time(n.EndDate)
	if end.IsZero() || end.Before(n.Start()) {
		return n.Start()
	}
	return end
}
