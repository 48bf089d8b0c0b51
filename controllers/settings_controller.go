package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental-backend/config"
	"carrental-backend/utils"
)

type calendarSettingsResponse struct {
	Timezone         string `json:"timezone"`
	WeekStart        string `json:"weekStart"`
	BoardRefreshCron string `json:"boardRefreshCron"`
	BoardHorizonDays int    `json:"boardHorizonDays"`
}

type SettingsController struct {
	Settings config.Settings
}

func NewSettingsController(settings config.Settings) *SettingsController {
	return &SettingsController{Settings: settings}
}

// GetCalendarSettings exposes what a client needs to render the calendar
// the same way the server computes it.
func (ctrl *SettingsController) GetCalendarSettings(c *gin.Context) {
	s := ctrl.Settings
	utils.JSONSuccess(c, http.StatusOK, calendarSettingsResponse{
		Timezone:         s.Location().String(),
		WeekStart:        s.WeekStart().String(),
		BoardRefreshCron: s.Board.RefreshCron,
		BoardHorizonDays: s.Board.HorizonDays,
	})
}
