package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

type BookingStore interface {
	List(ctx context.Context, vehicleID uint) ([]models.Booking, error)
	GetByID(ctx context.Context, id uint) (models.Booking, error)
	GetByReference(ctx context.Context, ref string) (models.Booking, error)
	Create(ctx context.Context, in services.BookingInput) (models.Booking, error)
	UpdateStatus(ctx context.Context, id uint, next models.BookingStatus) (models.Booking, error)
	Delete(ctx context.Context, id uint) error
}

type BookingController struct {
	Bookings BookingStore
	Loc      *time.Location
}

func NewBookingController(bookings BookingStore, loc *time.Location) *BookingController {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingController{Bookings: bookings, Loc: loc}
}

type createBookingPayload struct {
	VehicleID       uint            `json:"vehicleId" binding:"required"`
	PickupAt        string          `json:"pickupAt" binding:"required"`
	DropoffAt       string          `json:"dropoffAt" binding:"required"`
	Status          string          `json:"status" binding:"omitempty,bookingstatus"`
	CustomerName    string          `json:"customerName" binding:"max=255"`
	CustomerContact string          `json:"customerContact" binding:"max=255"`
	Extras          json.RawMessage `json:"extras"`
}

type updateBookingStatusPayload struct {
	Status string `json:"status" binding:"required,bookingstatus"`
}

// GetBookings lists bookings, optionally for one vehicle (?vehicle_id=).
func (ctrl *BookingController) GetBookings(c *gin.Context) {
	var vehicleID uint
	if raw := c.Query("vehicle_id"); raw != "" {
		ids, err := utils.ParseIDList(raw)
		if err != nil || len(ids) != 1 {
			respondBadRequest(c, "vehicle_id must be a single vehicle id")
			return
		}
		vehicleID = ids[0]
	}
	bookings, err := ctrl.Bookings.List(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	b, err := ctrl.Bookings.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

// GetBookingByReference handles GET /api/bookings/ref/:ref.
func (ctrl *BookingController) GetBookingByReference(c *gin.Context) {
	b, err := ctrl.Bookings.GetByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	pickup, err := utils.ParseDateTime(payload.PickupAt, ctrl.Loc)
	if err != nil {
		respondBadRequest(c, "pickupAt: "+err.Error())
		return
	}
	dropoff, err := utils.ParseDateTime(payload.DropoffAt, ctrl.Loc)
	if err != nil {
		respondBadRequest(c, "dropoffAt: "+err.Error())
		return
	}

	in := services.BookingInput{
		VehicleID:       payload.VehicleID,
		PickupAt:        pickup,
		DropoffAt:       dropoff,
		Status:          models.BookingStatus(payload.Status),
		CustomerName:    payload.CustomerName,
		CustomerContact: payload.CustomerContact,
	}
	if len(payload.Extras) > 0 && string(payload.Extras) != "null" {
		in.Extras = datatypes.JSON(payload.Extras)
	}

	b, err := ctrl.Bookings.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, b)
}

// UpdateBookingStatus handles PATCH /api/bookings/:id/status.
func (ctrl *BookingController) UpdateBookingStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload updateBookingStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	b, err := ctrl.Bookings.UpdateStatus(c.Request.Context(), id, models.BookingStatus(payload.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Bookings.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
