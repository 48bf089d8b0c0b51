package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carrental-backend/controllers"
	"carrental-backend/middleware"
	"carrental-backend/utils"
)

// Controllers bundles every handler group the router mounts.
type Controllers struct {
	Availability *controllers.AvailabilityController
	Vehicles     *controllers.VehicleController
	Bookings     *controllers.BookingController
	Notes        *controllers.NoteController
	Board        *controllers.BoardController
	Admins       *controllers.AdminController
	Settings     *controllers.SettingsController
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter mounts the API. Reads are open; every write goes through
// AdminAuth.
func SetupRouter(ctrl Controllers, auth middleware.Authenticator, corsOrigins string) *gin.Engine {
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins(corsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, "X-Availability-Errors"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminOnly := middleware.AdminAuth(auth)

	api := r.Group("/api")
	{
		api.GET("/settings/calendar", ctrl.Settings.GetCalendarSettings)

		avail := api.Group("/availability")
		{
			avail.GET("", ctrl.Availability.GetAvailability)
			avail.GET("/export.csv", ctrl.Availability.ExportCSV)
		}

		board := api.Group("/board")
		{
			board.GET("", ctrl.Board.GetBoard)
			board.GET("/ws", ctrl.Board.ServeWs)
		}

		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("", ctrl.Vehicles.GetVehicles)
			vehicles.GET("/:id", ctrl.Vehicles.GetVehicle)
			vehicles.GET("/:id/calendar.ics", ctrl.Vehicles.GetVehicleCalendar)
			vehicles.GET("/:id/conflicts", ctrl.Availability.GetConflicts)
			vehicles.POST("", adminOnly, ctrl.Vehicles.CreateVehicle)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", ctrl.Bookings.GetBookings)
			bookings.GET("/:id", ctrl.Bookings.GetBooking)
			bookings.GET("/ref/:ref", ctrl.Bookings.GetBookingByReference)
			bookings.POST("", adminOnly, ctrl.Bookings.CreateBooking)
			bookings.PATCH("/:id/status", adminOnly, ctrl.Bookings.UpdateBookingStatus)
			bookings.DELETE("/:id", adminOnly, ctrl.Bookings.DeleteBooking)
		}

		notes := api.Group("/notes")
		{
			notes.GET("", ctrl.Notes.GetNotes)
			notes.GET("/:id", ctrl.Notes.GetNote)
			notes.POST("", adminOnly, ctrl.Notes.CreateNote)
			notes.PUT("/:id", adminOnly, ctrl.Notes.UpdateNote)
			notes.DELETE("/:id", adminOnly, ctrl.Notes.DeleteNote)
		}

		api.POST("/auth/login", ctrl.Admins.Login)

		admins := api.Group("/admins", adminOnly)
		{
			admins.GET("", ctrl.Admins.GetAdmins)
			admins.GET("/me", ctrl.Admins.Me)
			admins.POST("", ctrl.Admins.CreateAdmin)
		}
	}

	return r
}
