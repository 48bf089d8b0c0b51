package availability_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental-backend/availability"
	"carrental-backend/models"
)

func statuses(days []availability.DayInfo) map[string]availability.DayStatus {
	out := make(map[string]availability.DayStatus, len(days))
	for _, d := range days {
		out[d.Date.Format(availability.DateLayout)] = d.Status
	}
	return out
}

func conflicts(days []availability.DayInfo) map[string]bool {
	out := make(map[string]bool, len(days))
	for _, d := range days {
		out[d.Date.Format(availability.DateLayout)] = d.HasConflict
	}
	return out
}

func TestCompute_EmptyVehicleIsAvailable(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(nil), notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-01"),
		End:        day("2024-06-30"),
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	require.Len(t, res.Vehicles[0].Days, 30)
	for _, d := range res.Days() {
		assert.Equal(t, availability.StatusAvailable, d.Status)
		assert.False(t, d.HasConflict)
		assert.NotNil(t, d.Bookings)
		assert.NotNil(t, d.Notes)
	}
}

func TestCompute_PendingBookingIsReserved(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(map[uint][]models.Booking{
		1: {booking(10, 1, models.BookingPending, "2024-06-01T10:00", "2024-06-03T10:00")},
	}), notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-05-31"),
		End:        day("2024-06-04"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]availability.DayStatus{
		"2024-05-31": availability.StatusAvailable,
		"2024-06-01": availability.StatusReserved,
		"2024-06-02": availability.StatusReserved,
		"2024-06-03": availability.StatusReserved,
		"2024-06-04": availability.StatusAvailable,
	}, statuses(res.Days()))
	for _, d := range res.Days() {
		assert.False(t, d.HasConflict)
	}
}

func TestCompute_OverlappingConfirmedBookings(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(map[uint][]models.Booking{
		1: {
			booking(10, 1, models.BookingConfirmed, "2024-06-01T10:00", "2024-06-05T10:00"),
			booking(11, 1, models.BookingConfirmed, "2024-06-04T08:00", "2024-06-06T10:00"),
		},
	}), notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-01"),
		End:        day("2024-06-06"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{
		"2024-06-01": false,
		"2024-06-02": false,
		"2024-06-03": false,
		"2024-06-04": true,
		"2024-06-05": false,
		"2024-06-06": false,
	}, conflicts(res.Days()))
	assert.Equal(t, availability.StatusOutOnRent, statuses(res.Days())["2024-06-04"])
}

func TestCompute_MaintenanceOverridesBooking(t *testing.T) {
	e := availability.NewEngine(
		bookingsByVehicle(map[uint][]models.Booking{
			1: {booking(10, 1, models.BookingConfirmed, "2024-06-11T09:00", "2024-06-13T17:00")},
		}),
		notesByVehicle(map[uint][]models.CalendarNote{
			1: {note(20, 1, models.NoteMaintenance, "2024-06-10", "2024-06-12")},
		}),
		nil,
	)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-10"),
		End:        day("2024-06-13"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]availability.DayStatus{
		"2024-06-10": availability.StatusMaintenance,
		"2024-06-11": availability.StatusMaintenance,
		"2024-06-12": availability.StatusMaintenance,
		"2024-06-13": availability.StatusOutOnRent,
	}, statuses(res.Days()))
}

func TestCompute_BlockedNoteWinsOverBookings(t *testing.T) {
	e := availability.NewEngine(
		bookingsByVehicle(map[uint][]models.Booking{
			1: {
				booking(10, 1, models.BookingActive, "2024-06-01T09:00", "2024-06-04T09:00"),
				booking(11, 1, models.BookingPending, "2024-06-02T09:00", "2024-06-03T09:00"),
			},
		}),
		notesByVehicle(map[uint][]models.CalendarNote{
			1: {
				note(20, 1, models.NoteBlocked, "2024-06-02", "2024-06-02"),
				note(21, 1, models.NoteMaintenance, "2024-06-02", "2024-06-03"),
			},
		}),
		nil,
	)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-02"),
		End:        day("2024-06-02"),
	})
	require.NoError(t, err)
	days := res.Days()
	require.Len(t, days, 1)
	assert.Equal(t, availability.StatusBlocked, days[0].Status)
	assert.True(t, days[0].HasConflict, "conflicts are still reported under a block")
	assert.Len(t, days[0].Notes, 2)
}

func TestCompute_CancelledKeptForDisplayOnly(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(map[uint][]models.Booking{
		1: {
			booking(10, 1, models.BookingConfirmed, "2024-06-01T10:00", "2024-06-03T10:00"),
			booking(11, 1, models.BookingCancelled, "2024-06-02T10:00", "2024-06-05T10:00"),
		},
	}), notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-02"),
		End:        day("2024-06-04"),
	})
	require.NoError(t, err)
	days := res.Days()
	require.Len(t, days, 3)

	assert.Len(t, days[0].Bookings, 2)
	assert.False(t, days[0].HasConflict)
	assert.Equal(t, availability.StatusOutOnRent, days[0].Status)

	require.Len(t, days[2].Bookings, 1)
	assert.Equal(t, models.BookingCancelled, days[2].Bookings[0].Status)
	assert.Equal(t, availability.StatusAvailable, days[2].Status)
}

func TestCompute_InvalidRangeSkipsSources(t *testing.T) {
	bs := bookingsByVehicle(nil)
	ns := notesByVehicle(nil)
	e := availability.NewEngine(bs, ns, fleetMock{ids: []uint{1}})

	_, err := e.Compute(context.Background(), availability.Query{
		Start: day("2024-06-05"),
		End:   day("2024-06-01"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, availability.ErrInvalidRange)
	assert.Equal(t, availability.CodeInvalidRange, availability.Code(err))
	assert.Zero(t, bs.calls.Load())
	assert.Zero(t, ns.calls.Load())
}

func TestCompute_RangeLimit(t *testing.T) {
	bs := bookingsByVehicle(nil)
	e := availability.NewEngine(bs, notesByVehicle(nil), fleetMock{ids: []uint{1}})
	assert.Equal(t, availability.DefaultMaxRangeDays, e.MaxRangeDays())

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-01-01"),
		End:        day("2024-12-31"),
	})
	require.NoError(t, err)
	assert.Len(t, res.Vehicles[0].Days, 366)

	calls := bs.calls.Load()
	_, err = e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("0001-01-01"),
		End:        day("9999-12-31"),
	})
	assert.ErrorIs(t, err, availability.ErrInvalidRange)
	assert.Equal(t, calls, bs.calls.Load())

	week := availability.NewEngine(bs, notesByVehicle(nil), nil, availability.WithMaxRangeDays(7))
	_, _, err = week.Window(availability.Query{Start: day("2024-06-01"), End: day("2024-06-07")})
	assert.NoError(t, err)
	_, _, err = week.Window(availability.Query{Start: day("2024-06-01"), End: day("2024-06-08")})
	assert.ErrorIs(t, err, availability.ErrInvalidRange)
}

func TestCompute_SourceUnavailableIsPerVehicle(t *testing.T) {
	bs := &bookingSourceMock{getFn: func(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.Booking, error) {
		if vehicleID == 2 {
			return nil, errors.New("dial tcp: i/o timeout")
		}
		return []models.Booking{booking(10, vehicleID, models.BookingPending, "2024-06-01T10:00", "2024-06-02T10:00")}, nil
	}}
	e := availability.NewEngine(bs, notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1, 2, 3},
		Start:      day("2024-06-01"),
		End:        day("2024-06-03"),
	})
	require.NoError(t, err)
	require.Len(t, res.Vehicles, 3)

	failed := res.Vehicles[1]
	assert.Equal(t, uint(2), failed.VehicleID)
	assert.Empty(t, failed.Days)
	assert.ErrorIs(t, failed.Err, availability.ErrSourceUnavailable)
	assert.Equal(t, availability.CodeSourceUnavailable, availability.Code(failed.Err))

	for _, i := range []int{0, 2} {
		assert.NoError(t, res.Vehicles[i].Err)
		assert.Len(t, res.Vehicles[i].Days, 3)
		assert.Equal(t, availability.StatusReserved, res.Vehicles[i].Days[0].Status)
	}
	assert.Len(t, res.Days(), 6)
	assert.ErrorIs(t, res.Err(), availability.ErrSourceUnavailable)
}

func TestCompute_NoteSourceFailureDropsWholeVehicle(t *testing.T) {
	ns := &noteSourceMock{getFn: func(context.Context, uint, time.Time, time.Time) ([]models.CalendarNote, error) {
		return nil, context.DeadlineExceeded
	}}
	e := availability.NewEngine(bookingsByVehicle(map[uint][]models.Booking{
		1: {booking(10, 1, models.BookingPending, "2024-06-01T10:00", "2024-06-02T10:00")},
	}), ns, nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{1},
		Start:      day("2024-06-01"),
		End:        day("2024-06-03"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Vehicles[0].Days)
	assert.ErrorIs(t, res.Vehicles[0].Err, availability.ErrSourceUnavailable)
	assert.ErrorIs(t, res.Vehicles[0].Err, context.DeadlineExceeded)
}

func TestCompute_UnknownVehicle(t *testing.T) {
	bs := &bookingSourceMock{getFn: func(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.Booking, error) {
		if vehicleID == 9 {
			return nil, fmt.Errorf("vehicle %d: %w", vehicleID, availability.ErrUnknownVehicle)
		}
		return nil, nil
	}}
	e := availability.NewEngine(bs, notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{
		VehicleIDs: []uint{9, 1},
		Start:      day("2024-06-01"),
		End:        day("2024-06-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, availability.CodeUnknownVehicle, availability.Code(res.Vehicles[0].Err))
	assert.ErrorIs(t, res.Vehicles[0].Err, availability.ErrUnknownVehicle)
	assert.NoError(t, res.Vehicles[1].Err)
	assert.Len(t, res.Vehicles[1].Days, 1)
}

func TestCompute_AllVehiclesUsesFleet(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(nil), notesByVehicle(nil), fleetMock{ids: []uint{3, 1, 2}})

	res, err := e.Compute(context.Background(), availability.Query{Start: day("2024-06-01"), End: day("2024-06-02")})
	require.NoError(t, err)
	require.Len(t, res.Vehicles, 3)
	assert.Equal(t, uint(3), res.Vehicles[0].VehicleID)
	assert.Equal(t, uint(1), res.Vehicles[1].VehicleID)
	assert.Equal(t, uint(2), res.Vehicles[2].VehicleID)
}

func TestCompute_FleetFailure(t *testing.T) {
	e := availability.NewEngine(bookingsByVehicle(nil), notesByVehicle(nil), fleetMock{err: errors.New("db down")})

	_, err := e.Compute(context.Background(), availability.Query{Start: day("2024-06-01"), End: day("2024-06-02")})
	assert.ErrorIs(t, err, availability.ErrSourceUnavailable)
}

func TestCompute_IgnoresOtherVehiclesFromSource(t *testing.T) {
	bs := &bookingSourceMock{getFn: func(context.Context, uint, time.Time, time.Time) ([]models.Booking, error) {
		return []models.Booking{
			booking(10, 1, models.BookingPending, "2024-06-01T10:00", "2024-06-02T10:00"),
			booking(11, 2, models.BookingConfirmed, "2024-06-01T10:00", "2024-06-02T10:00"),
		}, nil
	}}
	e := availability.NewEngine(bs, notesByVehicle(nil), nil)

	res, err := e.Compute(context.Background(), availability.Query{VehicleIDs: []uint{1}, Start: day("2024-06-01"), End: day("2024-06-01")})
	require.NoError(t, err)
	days := res.Days()
	require.Len(t, days, 1)
	require.Len(t, days[0].Bookings, 1)
	assert.Equal(t, uint(10), days[0].Bookings[0].ID)
	assert.Equal(t, availability.StatusReserved, days[0].Status)
}

func TestCompute_DeterministicAndParallelSafe(t *testing.T) {
	snapshot := map[uint][]models.Booking{
		1: {
			booking(12, 1, models.BookingConfirmed, "2024-06-04T08:00", "2024-06-06T10:00"),
			booking(10, 1, models.BookingConfirmed, "2024-06-01T10:00", "2024-06-05T10:00"),
		},
		2: {booking(20, 2, models.BookingCompleted, "2024-06-02T10:00", "2024-06-03T10:00")},
		3: {booking(30, 3, models.BookingCancelled, "2024-06-02T10:00", "2024-06-03T10:00")},
	}
	notes := map[uint][]models.CalendarNote{
		2: {note(2, 2, models.NoteGeneral, "2024-06-01", "2024-06-30")},
		3: {note(3, 3, models.NoteMaintenance, "2024-06-05", "2024-06-06")},
	}
	q := availability.Query{VehicleIDs: []uint{1, 2, 3, 4}, Start: day("2024-06-01"), End: day("2024-06-30")}

	sequential := availability.NewEngine(bookingsByVehicle(snapshot), notesByVehicle(notes), nil)
	parallel := availability.NewEngine(bookingsByVehicle(snapshot), notesByVehicle(notes), nil, availability.WithParallelism(4))

	first, err := sequential.Compute(context.Background(), q)
	require.NoError(t, err)
	second, err := sequential.Compute(context.Background(), q)
	require.NoError(t, err)
	third, err := parallel.Compute(context.Background(), q)
	require.NoError(t, err)

	a, err := json.Marshal(first.Days())
	require.NoError(t, err)
	b, err := json.Marshal(second.Days())
	require.NoError(t, err)
	c, err := json.Marshal(third.Days())
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, string(a), string(c))
}

func TestCompute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bs := bookingsByVehicle(nil)
	e := availability.NewEngine(bs, notesByVehicle(nil), nil)

	res, err := e.Compute(ctx, availability.Query{VehicleIDs: []uint{1}, Start: day("2024-06-01"), End: day("2024-06-01")})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Vehicles[0].Err, availability.ErrSourceUnavailable)
	assert.Zero(t, bs.calls.Load())
}

func TestDayInfo_MarshalsDateAsCalendarDay(t *testing.T) {
	info := availability.ComputeDay(1, day("2024-06-01"), nil, nil, time.UTC)

	raw, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2024-06-01", decoded["date"])
	assert.Equal(t, "available", decoded["status"])
	assert.Equal(t, false, decoded["hasConflict"])
	assert.Equal(t, []any{}, decoded["bookings"])
}
