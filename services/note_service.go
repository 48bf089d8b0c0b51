package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carrental-backend/availability"
	"carrental-backend/models"
)

// NoteService wraps *gorm.DB for calendar notes. It is the engine's
// NoteSource and hands out recurring notes already expanded.
type NoteService struct {
	DB    *gorm.DB
	Cache Invalidator
}

func NewNoteService(db *gorm.DB, cache Invalidator) *NoteService {
	return &NoteService{DB: db, Cache: cache}
}

// notesTouching selects one-off notes overlapping [from, to] and every
// recurring note that has started by to; recurrences are filtered after
// expansion.
func notesTouching(db *gorm.DB, from, to time.Time) func(*gorm.DB) *gorm.DB {
	f := from.Format(availability.DateLayout)
	t := to.Format(availability.DateLayout)
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(
			db.Where("(rrule = '' OR rrule IS NULL) AND start_date <= ? AND end_date >= ?", t, f).
				Or("rrule <> '' AND start_date <= ?", t),
		)
	}
}

func (s *NoteService) GetNotes(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.CalendarNote, error) {
	q := s.DB.WithContext(ctx).Scopes(notesTouching(s.DB.Session(&gorm.Session{NewDB: true}), from, to))
	if vehicleID != availability.AllVehicles {
		q = q.Where("vehicle_id = ?", vehicleID)
	}

	var notes []models.CalendarNote
	if err := q.Order("start_date ASC, id ASC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}

	if len(notes) == 0 && vehicleID != availability.AllVehicles {
		ok, err := vehicleExists(ctx, s.DB, vehicleID)
		if err != nil {
			return nil, fmt.Errorf("check vehicle %d: %w", vehicleID, err)
		}
		if !ok {
			return nil, ErrVehicleNotFound
		}
	}
	return expandNotes(notes, from, to), nil
}

func (s *NoteService) List(ctx context.Context, vehicleID uint) ([]models.CalendarNote, error) {
	q := s.DB.WithContext(ctx).Order("start_date ASC, id ASC")
	if vehicleID != 0 {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	var notes []models.CalendarNote
	if err := q.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) GetByID(ctx context.Context, id uint) (models.CalendarNote, error) {
	var n models.CalendarNote
	if err := s.DB.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CalendarNote{}, ErrNoteNotFound
		}
		return models.CalendarNote{}, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, nil
}

// NoteInput is what an operator submits to create or replace a note.
type NoteInput struct {
	VehicleID   uint
	StartDate   time.Time
	EndDate     time.Time
	NoteType    models.NoteType
	Text        string
	RRule       string
	RepeatUntil *time.Time
}

// build validates in and converts it into a note row.
func (in NoteInput) build() (models.CalendarNote, error) {
	if in.VehicleID == 0 {
		return models.CalendarNote{}, fmt.Errorf("%w: vehicle is required", ErrInvalidNote)
	}
	if in.StartDate.IsZero() {
		return models.CalendarNote{}, fmt.Errorf("%w: start date is required", ErrInvalidNote)
	}
	start := civil(in.StartDate)
	end := start
	if !in.EndDate.IsZero() {
		end = civil(in.EndDate)
	}
	if end.Before(start) {
		return models.CalendarNote{}, fmt.Errorf("%w: end date is before start date", ErrInvalidNote)
	}

	typ := in.NoteType
	if typ == "" {
		typ = models.NoteGeneral
	}
	if !typ.Valid() {
		return models.CalendarNote{}, fmt.Errorf("%w: unknown note type %q", ErrInvalidNote, typ)
	}

	rule := strings.TrimSpace(in.RRule)
	if rule != "" {
		if _, err := parseNoteRule(rule); err != nil {
			return models.CalendarNote{}, err
		}
	}

	n := models.CalendarNote{
		VehicleID: in.VehicleID,
		StartDate: datatypes.Date(start),
		EndDate:   datatypes.Date(end),
		NoteType:  typ,
		Text:      strings.TrimSpace(in.Text),
		RRule:     rule,
	}
	if in.RepeatUntil != nil && rule != "" {
		until := datatypes.Date(civil(*in.RepeatUntil))
		n.RepeatUntil = &until
	}
	return n, nil
}

func (s *NoteService) Create(ctx context.Context, in NoteInput) (models.CalendarNote, error) {
	n, err := in.build()
	if err != nil {
		return models.CalendarNote{}, err
	}
	ok, err := vehicleExists(ctx, s.DB, n.VehicleID)
	if err != nil {
		return models.CalendarNote{}, fmt.Errorf("check vehicle %d: %w", n.VehicleID, err)
	}
	if !ok {
		return models.CalendarNote{}, ErrVehicleNotFound
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		return models.CalendarNote{}, fmt.Errorf("create note: %w", err)
	}
	s.invalidate(ctx, n.VehicleID)
	return n, nil
}

// Update replaces a note's content. Moving a note to another vehicle
// invalidates both calendars.
func (s *NoteService) Update(ctx context.Context, id uint, in NoteInput) (models.CalendarNote, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return models.CalendarNote{}, err
	}
	if in.VehicleID == 0 {
		in.VehicleID = existing.VehicleID
	}
	n, err := in.build()
	if err != nil {
		return models.CalendarNote{}, err
	}
	if n.VehicleID != existing.VehicleID {
		ok, err := vehicleExists(ctx, s.DB, n.VehicleID)
		if err != nil {
			return models.CalendarNote{}, fmt.Errorf("check vehicle %d: %w", n.VehicleID, err)
		}
		if !ok {
			return models.CalendarNote{}, ErrVehicleNotFound
		}
	}

	n.ID = existing.ID
	n.CreatedAt = existing.CreatedAt
	if err := s.DB.WithContext(ctx).Save(&n).Error; err != nil {
		return models.CalendarNote{}, fmt.Errorf("update note %d: %w", id, err)
	}

	s.invalidate(ctx, existing.VehicleID)
	if n.VehicleID != existing.VehicleID {
		s.invalidate(ctx, n.VehicleID)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, id uint) error {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.CalendarNote{}, id).Error; err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	s.invalidate(ctx, n.VehicleID)
	return nil
}

func (s *NoteService) invalidate(ctx context.Context, vehicleID uint) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, vehicleID)
	}
}
