package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

type VehicleStore interface {
	List(ctx context.Context) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id uint) (models.Vehicle, error)
	Create(ctx context.Context, v *models.Vehicle) error
}

type VehicleController struct {
	Vehicles VehicleStore
	Bookings BookingStore
	Notes    NoteStore
	Now      func() time.Time
}

func NewVehicleController(vehicles VehicleStore, bookings BookingStore, notes NoteStore) *VehicleController {
	return &VehicleController{Vehicles: vehicles, Bookings: bookings, Notes: notes, Now: time.Now}
}

type createVehiclePayload struct {
	DisplayName string `json:"displayName" binding:"required,max=120"`
	PlateNumber string `json:"plateNumber" binding:"max=32"`
	Model       string `json:"model" binding:"max=120"`
	Category    string `json:"category" binding:"max=50"`
	Active      *bool  `json:"active"`
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

func (ctrl *VehicleController) GetVehicles(c *gin.Context) {
	vehicles, err := ctrl.Vehicles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, vehicles)
}

func (ctrl *VehicleController) GetVehicle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	v, err := ctrl.Vehicles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

func (ctrl *VehicleController) CreateVehicle(c *gin.Context) {
	var payload createVehiclePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	v := models.Vehicle{
		DisplayName: strings.TrimSpace(payload.DisplayName),
		PlateNumber: strings.TrimSpace(payload.PlateNumber),
		ModelName:   strings.TrimSpace(payload.Model),
		Category:    strings.TrimSpace(payload.Category),
		Active:      true,
	}
	if payload.Active != nil {
		v.Active = *payload.Active
	}
	if err := ctrl.Vehicles.Create(c.Request.Context(), &v); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, v)
}

// GetVehicleCalendar handles GET /api/vehicles/:id/calendar.ics: the
// vehicle's bookings and notes as an iCalendar feed.
func (ctrl *VehicleController) GetVehicleCalendar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	v, err := ctrl.Vehicles.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	bookings, err := ctrl.Bookings.List(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	notes, err := ctrl.Notes.List(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="vehicle-%d.ics"`, id))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8",
		[]byte(services.VehicleICS(v, bookings, notes, ctrl.Now())))
}
