package main

import (
	"context"
	"errors"
	"kamenko/gym-app/internal/api"
	"kamenko/gym-app/internal/config"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/push"
	"kamenko/gym-app/internal/repository/mongo"
	"kamenko/gym-app/internal/service"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Gym App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureSlotIndexes(ctx, appDB.Collection("slots"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureBookingIndexes(ctx, appDB.Collection("bookings"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	slotRepo := mongo.NewMongoSlotRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	bookingRepo := mongo.NewMongoBookingRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	announcementRepo := mongo.NewMongoAnnouncementRepository(appDB)
	// The ledger needs the client itself to open transactional sessions.
	bookingLedger := mongo.NewMongoBookingLedger(dbClient, appDB)

	// --- Initialize Push Dispatcher ---
	log.Println("Initializing web push dispatcher...")
	dispatcher := push.NewWebPushDispatcher(cfg.VAPID)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	slotService := service.NewSlotService(slotRepo)
	// The notification service comes first: it is the fan-out target the
	// booking, session and announcement services notify after their writes.
	notificationService := service.NewNotificationService(notificationRepo, userRepo, sessionRepo, bookingRepo, dispatcher)
	sessionService := service.NewSessionService(sessionRepo, slotRepo, notificationService)
	bookingService := service.NewBookingService(bookingLedger, bookingRepo, notificationService)
	announcementService := service.NewAnnouncementService(announcementRepo, notificationService)

	// --- Daily Reminder Job ---
	reminderCtx, stopReminders := context.WithCancel(context.Background())
	defer stopReminders()
	go runDailyReminders(reminderCtx, cfg.Reminder, notificationService)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, slotService, sessionService, bookingService, notificationService, announcementService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// runDailyReminders fires the session-today reminder once per day at the
// configured local hour. Reminders are best effort; a failed run is logged
// and the loop simply waits for the next day.
func runDailyReminders(ctx context.Context, cfg config.ReminderConfig, notifications service.NotificationService) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("ERROR: Invalid reminder timezone %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	for {
		now := time.Now().In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), cfg.Hour, 0, 0, 0, loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		date := domain.ToISODate(time.Now().In(loc))
		if err := notifications.SendDailyReminders(runCtx, date); err != nil {
			log.Printf("ERROR: Daily reminder run for %s failed: %v", date, err)
		}
		cancel()
	}
}
