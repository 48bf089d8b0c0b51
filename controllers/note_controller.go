package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrental-backend/models"
	"carrental-backend/services"
	"carrental-backend/utils"
)

type NoteStore interface {
	List(ctx context.Context, vehicleID uint) ([]models.CalendarNote, error)
	GetByID(ctx context.Context, id uint) (models.CalendarNote, error)
	Create(ctx context.Context, in services.NoteInput) (models.CalendarNote, error)
	Update(ctx context.Context, id uint, in services.NoteInput) (models.CalendarNote, error)
	Delete(ctx context.Context, id uint) error
}

type NoteController struct {
	Notes NoteStore
	Loc   *time.Location
}

func NewNoteController(notes NoteStore, loc *time.Location) *NoteController {
	if loc == nil {
		loc = time.UTC
	}
	return &NoteController{Notes: notes, Loc: loc}
}

type notePayload struct {
	VehicleID   uint   `json:"vehicleId"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate"`
	NoteType    string `json:"noteType" binding:"omitempty,notetype"`
	Text        string `json:"text" binding:"max=2000"`
	RRule       string `json:"rrule" binding:"max=255"`
	RepeatUntil string `json:"repeatUntil"`
}

func (ctrl *NoteController) input(c *gin.Context) (services.NoteInput, bool) {
	var payload notePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return services.NoteInput{}, false
	}

	in := services.NoteInput{
		VehicleID: payload.VehicleID,
		NoteType:  models.NoteType(payload.NoteType),
		Text:      payload.Text,
		RRule:     payload.RRule,
	}
	var err error
	if in.StartDate, err = utils.ParseDate(payload.StartDate, ctrl.Loc); err != nil {
		respondBadRequest(c, "startDate: "+err.Error())
		return services.NoteInput{}, false
	}
	if payload.EndDate != "" {
		if in.EndDate, err = utils.ParseDate(payload.EndDate, ctrl.Loc); err != nil {
			respondBadRequest(c, "endDate: "+err.Error())
			return services.NoteInput{}, false
		}
	}
	if payload.RepeatUntil != "" {
		until, err := utils.ParseDate(payload.RepeatUntil, ctrl.Loc)
		if err != nil {
			respondBadRequest(c, "repeatUntil: "+err.Error())
			return services.NoteInput{}, false
		}
		in.RepeatUntil = &until
	}
	return in, true
}

func (ctrl *NoteController) GetNotes(c *gin.Context) {
	var vehicleID uint
	if raw := c.Query("vehicle_id"); raw != "" {
		ids, err := utils.ParseIDList(raw)
		if err != nil || len(ids) != 1 {
			respondBadRequest(c, "vehicle_id must be a single vehicle id")
			return
		}
		vehicleID = ids[0]
	}
	notes, err := ctrl.Notes.List(c.Request.Context(), vehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, notes)
}

func (ctrl *NoteController) GetNote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	n, err := ctrl.Notes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, n)
}

func (ctrl *NoteController) CreateNote(c *gin.Context) {
	in, ok := ctrl.input(c)
	if !ok {
		return
	}
	n, err := ctrl.Notes.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, n)
}

func (ctrl *NoteController) UpdateNote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	in, ok := ctrl.input(c)
	if !ok {
		return
	}
	n, err := ctrl.Notes.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, n)
}

func (ctrl *NoteController) DeleteNote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Notes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
