package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/availability"
	"carrental-backend/services"
	"carrental-backend/utils"
)

// respondError maps service and engine errors onto the error envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidRange):
		utils.JSONError(c, http.StatusBadRequest, string(availability.CodeInvalidRange), err.Error())
	case errors.Is(err, availability.ErrUnknownVehicle):
		utils.JSONError(c, http.StatusNotFound, string(availability.CodeUnknownVehicle), err.Error())
	case errors.Is(err, availability.ErrSourceUnavailable):
		log.Printf("❌ %v", err)
		utils.JSONError(c, http.StatusServiceUnavailable, string(availability.CodeSourceUnavailable), "booking or note data is unavailable, try again shortly")
	case errors.Is(err, services.ErrBookingNotFound), errors.Is(err, services.ErrNoteNotFound):
		utils.JSONError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrDuplicate):
		utils.JSONError(c, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, services.ErrInvalidBooking), errors.Is(err, services.ErrInvalidNote), errors.Is(err, services.ErrInvalidVehicle),
		errors.Is(err, services.ErrInvalidAdmin):
		utils.JSONError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.JSONError(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func respondBindError(c *gin.Context, err error) {
	log.Printf("❌ JSON BINDING ERROR (400): %v", err)
	utils.JSONError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request payload", err.Error())
}

func respondBadRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "INVALID_INPUT", message)
}
