package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carrental-backend/availability"
	"carrental-backend/config"
	"carrental-backend/controllers"
	"carrental-backend/routes"
	"carrental-backend/services"
	"carrental-backend/socket"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	settings, err := config.LoadSettings(".")
	if err != nil {
		log.Fatalf("❌ Config load failed: %v", err)
	}
	loc := settings.Location()
	log.Printf("✅ Calendar timezone %s, weeks start on %s", loc, settings.WeekStart())

	if err := config.ConnectDatabase(settings.Admin); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	cache := services.NewAvailabilityCache(config.ConnectRedis(settings.Redis.URL), settings.Redis.CacheTTL, loc)

	// Initialize services
	vehicleService := services.NewVehicleService(db)
	bookingService := services.NewBookingService(db, cache)
	noteService := services.NewNoteService(db, cache)
	adminService := services.NewAdminService(db)

	engine := availability.NewEngine(bookingService, noteService, vehicleService,
		availability.WithLocation(loc),
		availability.WithParallelism(settings.Engine.Parallelism),
		availability.WithMaxRangeDays(settings.Engine.MaxRangeDays),
	)
	availabilityService := services.NewAvailabilityService(engine, vehicleService, cache)

	hub := socket.NewHub()
	board := services.NewBoardService(availabilityService, hub, loc, settings.Board.HorizonDays)
	if err := board.Start(settings.Board.RefreshCron, 30*time.Second); err != nil {
		log.Fatalf("❌ Board refresher: %v", err)
	}

	// Initialize controllers
	ctrl := routes.Controllers{
		Availability: controllers.NewAvailabilityController(availabilityService, vehicleService, settings.WeekStart()),
		Vehicles:     controllers.NewVehicleController(vehicleService, bookingService, noteService),
		Bookings:     controllers.NewBookingController(bookingService, loc),
		Notes:        controllers.NewNoteController(noteService, loc),
		Board:        controllers.NewBoardController(board, hub),
		Admins:       controllers.NewAdminController(adminService),
		Settings:     controllers.NewSettingsController(settings),
	}

	router := routes.SetupRouter(ctrl, adminService, settings.Server.CorsOrigins)

	addr := ":" + settings.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	board.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
