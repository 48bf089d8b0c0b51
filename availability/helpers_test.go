package availability_test

import (
	"context"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"

	"carrental-backend/models"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func booking(id, vehicleID uint, status models.BookingStatus, pickup, dropoff string) models.Booking {
	return models.Booking{
		ID:        id,
		VehicleID: vehicleID,
		Status:    status,
		PickupAt:  at(pickup),
		DropoffAt: at(dropoff),
	}
}

func note(id, vehicleID uint, typ models.NoteType, start, end string) models.CalendarNote {
	return models.CalendarNote{
		ID:        id,
		VehicleID: vehicleID,
		NoteType:  typ,
		StartDate: datatypes.Date(day(start)),
		EndDate:   datatypes.Date(day(end)),
	}
}

type bookingSourceMock struct {
	getFn func(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.Booking, error)
	calls atomic.Int32
}

func (m *bookingSourceMock) GetBookings(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.Booking, error) {
	m.calls.Add(1)
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, vehicleID, from, to)
}

type noteSourceMock struct {
	getFn func(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.CalendarNote, error)
	calls atomic.Int32
}

func (m *noteSourceMock) GetNotes(ctx context.Context, vehicleID uint, from, to time.Time) ([]models.CalendarNote, error) {
	m.calls.Add(1)
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, vehicleID, from, to)
}

type fleetMock struct {
	ids []uint
	err error
}

func (f fleetMock) VehicleIDs(context.Context) ([]uint, error) { return f.ids, f.err }

// bookingsByVehicle serves a fixed snapshot keyed by vehicle id.
func bookingsByVehicle(snapshot map[uint][]models.Booking) *bookingSourceMock {
	return &bookingSourceMock{getFn: func(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.Booking, error) {
		return append([]models.Booking(nil), snapshot[vehicleID]...), nil
	}}
}

func notesByVehicle(snapshot map[uint][]models.CalendarNote) *noteSourceMock {
	return &noteSourceMock{getFn: func(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.CalendarNote, error) {
		return append([]models.CalendarNote(nil), snapshot[vehicleID]...), nil
	}}
}
