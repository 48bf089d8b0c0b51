package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if ct := w.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// memBookings is an in-memory BookingStore that also serves as the
// engine's booking source.
type memBookings struct {
	byVehicle map[uint][]models.Booking
	known     map[uint]bool
	lastInput services.BookingInput
	err       error
}

func (m *memBookings) GetBookings(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.Booking, error) {
	if !m.known[vehicleID] {
		return nil, services.ErrVehicleNotFound
	}
	return append([]models.Booking(nil), m.byVehicle[vehicleID]...), nil
}

func (m *memBookings) List(_ context.Context, vehicleID uint) ([]models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	if vehicleID != 0 {
		return m.byVehicle[vehicleID], nil
	}
	var all []models.Booking
	for _, bs := range m.byVehicle {
		all = append(all, bs...)
	}
	return all, nil
}

func (m *memBookings) GetByID(_ context.Context, id uint) (models.Booking, error) {
	for _, bs := range m.byVehicle {
		for _, b := range bs {
			if b.ID == id {
				return b, nil
			}
		}
	}
	return models.Booking{}, services.ErrBookingNotFound
}

func (m *memBookings) GetByReference(_ context.Context, ref string) (models.Booking, error) {
	for _, bs := range m.byVehicle {
		for _, b := range bs {
			if b.ReferenceCode != "" && b.ReferenceCode == strings.ToUpper(strings.TrimSpace(ref)) {
				return b, nil
			}
		}
	}
	return models.Booking{}, services.ErrBookingNotFound
}

func (m *memBookings) Create(_ context.Context, in services.BookingInput) (models.Booking, error) {
	m.lastInput = in
	if m.err != nil {
		return models.Booking{}, m.err
	}
	status := in.Status
	if status == "" {
		status = models.BookingPending
	}
	return models.Booking{ID: 42, VehicleID: in.VehicleID, ReferenceCode: "RNT-TEST0001",
		PickupAt: in.PickupAt, DropoffAt: in.DropoffAt, Status: status}, nil
}

func (m *memBookings) UpdateStatus(ctx context.Context, id uint, next models.BookingStatus) (models.Booking, error) {
	if m.err != nil {
		return models.Booking{}, m.err
	}
	b, err := m.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	b.Status = next
	return b, nil
}

func (m *memBookings) Delete(ctx context.Context, id uint) error {
	_, err := m.GetByID(ctx, id)
	return err
}

type memNotes struct {
	byVehicle map[uint][]models.CalendarNote
	lastInput services.NoteInput
	err       error
}

func (m *memNotes) GetNotes(_ context.Context, vehicleID uint, _, _ time.Time) ([]models.CalendarNote, error) {
	return m.byVehicle[vehicleID], nil
}

func (m *memNotes) List(_ context.Context, vehicleID uint) ([]models.CalendarNote, error) {
	return m.byVehicle[vehicleID], nil
}

func (m *memNotes) GetByID(_ context.Context, id uint) (models.CalendarNote, error) {
	for _, ns := range m.byVehicle {
		for _, n := range ns {
			if n.ID == id {
				return n, nil
			}
		}
	}
	return models.CalendarNote{}, services.ErrNoteNotFound
}

func (m *memNotes) Create(_ context.Context, in services.NoteInput) (models.CalendarNote, error) {
	m.lastInput = in
	if m.err != nil {
		return models.CalendarNote{}, m.err
	}
	return models.CalendarNote{ID: 7, VehicleID: in.VehicleID, NoteType: in.NoteType, Text: in.Text}, nil
}

func (m *memNotes) Update(ctx context.Context, id uint, in services.NoteInput) (models.CalendarNote, error) {
	m.lastInput = in
	n, err := m.GetByID(ctx, id)
	if err != nil {
		return models.CalendarNote{}, err
	}
	n.Text = in.Text
	return n, nil
}

func (m *memNotes) Delete(ctx context.Context, id uint) error {
	_, err := m.GetByID(ctx, id)
	return err
}

type memVehicles struct {
	vehicles []models.Vehicle
	err      error
}

func (m *memVehicles) VehicleIDs(context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		ids = append(ids, v.ID)
	}
	return ids, nil
}

func (m *memVehicles) List(context.Context) ([]models.Vehicle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vehicles, nil
}

func (m *memVehicles) GetByID(_ context.Context, id uint) (models.Vehicle, error) {
	for _, v := range m.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Vehicle{}, services.ErrVehicleNotFound
}

func (m *memVehicles) Create(_ context.Context, v *models.Vehicle) error {
	if m.err != nil {
		return m.err
	}
	v.ID = uint(len(m.vehicles) + 1)
	m.vehicles = append(m.vehicles, *v)
	return nil
}

func testFleet() *memVehicles {
	corolla := models.Vehicle{DisplayName: "Corolla #1", Active: true}
	corolla.ID = 1
	civic := models.Vehicle{DisplayName: "Civic #2", Active: true}
	civic.ID = 2
	return &memVehicles{vehicles: []models.Vehicle{corolla, civic}}
}
