// services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carrental-backend/availability"
	"carrental-backend/models"
)

// BookingService wraps *gorm.DB for the bookings table. It is also the
// engine's BookingSource.
type BookingService struct {
	DB    *gorm.DB
	Cache Invalidator
}

func NewBookingService(db *gorm.DB, cache Invalidator) *BookingService {
	return &BookingService{DB: db, Cache: cache}
}

// bookingTransitions lists the statuses each status may move to.
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingActive, models.BookingCancelled},
	models.BookingActive:    {models.BookingCompleted},
}

// CanTransition reports whether a booking in status from may move to to.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewReferenceCode returns a customer-facing booking reference such as
// "RNT-1A2B3C4D".
func NewReferenceCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RNT-" + strings.ToUpper(id[:8])
}

// bookingsTouching selects bookings whose [pickup day, dropoff day] meets
// the inclusive day range [from, to].
func bookingsTouching(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("pickup_at < ? AND dropoff_at >= ?", to.AddDate(0, 0, 1), from)
	}
}

// GetBookings returns every booking of vehicleID touching [from, to],
// cancelled ones included. AllVehicles drops the vehicle filter.
func (s *BookingService) GetBookings(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Scopes(bookingsTouching(from, to))
	if vehicleID != availability.AllVehicles {
		q = q.Where("vehicle_id = ?", vehicleID)
	}

	var bookings []models.Booking
	if err := q.Order("pickup_at ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	// An empty answer is ambiguous: only then pay for the existence check.
	if len(bookings) == 0 && vehicleID != availability.AllVehicles {
		ok, err := vehicleExists(ctx, s.DB, vehicleID)
		if err != nil {
			return nil, fmt.Errorf("check vehicle %d: %w", vehicleID, err)
		}
		if !ok {
			return nil, ErrVehicleNotFound
		}
	}
	return bookings, nil
}

func (s *BookingService) List(ctx context.Context, vehicleID uint) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Order("pickup_at ASC, id ASC")
	if vehicleID != 0 {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) GetByID(ctx context.Context, id uint) (models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// BookingInput is what an operator submits to create a booking.
type BookingInput struct {
	VehicleID       uint
	PickupAt        time.Time
	DropoffAt       time.Time
	Status          models.BookingStatus
	CustomerName    string
	CustomerContact string
	Extras          datatypes.JSON
}

func (in BookingInput) validate() error {
	if in.VehicleID == 0 {
		return fmt.Errorf("%w: vehicle is required", ErrInvalidBooking)
	}
	if in.PickupAt.IsZero() || in.DropoffAt.IsZero() {
		return fmt.Errorf("%w: pickup and dropoff are required", ErrInvalidBooking)
	}
	if !in.PickupAt.Before(in.DropoffAt) {
		return fmt.Errorf("%w: pickup must be before dropoff", ErrInvalidBooking)
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBooking, in.Status)
	}
	return nil
}

// Create stores a new booking. Overlapping bookings are accepted on
// purpose; the availability engine flags them as conflicts.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (models.Booking, error) {
	if err := in.validate(); err != nil {
		return models.Booking{}, err
	}
	ok, err := vehicleExists(ctx, s.DB, in.VehicleID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("check vehicle %d: %w", in.VehicleID, err)
	}
	if !ok {
		return models.Booking{}, ErrVehicleNotFound
	}

	status := in.Status
	if status == "" {
		status = models.BookingPending
	}

	var booking models.Booking
	const maxRetries = 5
	var createErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		booking = models.Booking{
			VehicleID:       in.VehicleID,
			ReferenceCode:   NewReferenceCode(),
			PickupAt:        in.PickupAt,
			DropoffAt:       in.DropoffAt,
			Status:          status,
			CustomerName:    strings.TrimSpace(in.CustomerName),
			CustomerContact: strings.TrimSpace(in.CustomerContact),
			Extras:          in.Extras,
		}
		createErr = s.DB.WithContext(ctx).Create(&booking).Error
		if createErr == nil {
			break
		}
		if isDuplicateKey(createErr) {
			log.Printf("booking reference collision (attempt %d) - retrying", attempt+1)
			continue
		}
		return models.Booking{}, fmt.Errorf("create booking: %w", createErr)
	}
	if createErr != nil {
		return models.Booking{}, fmt.Errorf("create booking after retries: %w", createErr)
	}

	s.invalidate(ctx, booking.VehicleID)
	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, next models.BookingStatus) (models.Booking, error) {
	if !next.Valid() {
		return models.Booking{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if !CanTransition(booking.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
		}
		booking.Status = next
		return tx.Model(&booking).Update("status", next).Error
	})
	if err != nil {
		return models.Booking{}, err
	}

	s.invalidate(ctx, booking.VehicleID)
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, id uint) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Booking{}, id).Error; err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	s.invalidate(ctx, booking.VehicleID)
	return nil
}

func (s *BookingService) invalidate(ctx context.Context, vehicleID uint) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, vehicleID)
	}
}
