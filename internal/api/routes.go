package api

import (
	"kamenko/gym-app/internal/domain" // Needed for RoleMiddleware
	"kamenko/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	slotService service.SlotService,
	sessionService service.SessionService,
	bookingService service.BookingService,
	notificationService service.NotificationService,
	announcementService service.AnnouncementService,
) {

	authHandler := NewAuthHandler(authService)
	sessionHandler := NewSessionHandler(sessionService)
	bookingHandler := NewBookingHandler(bookingService)
	notificationHandler := NewNotificationHandler(notificationService, announcementService)
	coachHandler := NewCoachHandler(slotService, sessionService, bookingService, announcementService, notificationService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Schedule ---
		protected.GET("/sessions/week", sessionHandler.GetWeek)
		protected.GET("/sessions/:id", sessionHandler.GetSession)

		// --- Bookings (the ledger's public surface) ---
		protected.POST("/bookings", bookingHandler.Reserve)
		protected.DELETE("/bookings/:id", bookingHandler.Release)
		protected.GET("/bookings", bookingHandler.GetMyBookings)

		// --- Notifications & push registry ---
		protected.GET("/notifications", notificationHandler.GetFeed)
		protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.POST("/push/subscribe", notificationHandler.Subscribe)
		protected.POST("/push/unsubscribe", notificationHandler.Unsubscribe)

		// --- Announcements ---
		protected.GET("/announcement", notificationHandler.GetAnnouncement)

		// --- Coach Specific Routes ---
		// All routes in this group require authentication (from 'protected')
		// AND the user to have the 'coach' role.
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// Slot templates
			coachGroup.POST("/slots", coachHandler.CreateSlot)
			coachGroup.GET("/slots", coachHandler.GetSlots)
			coachGroup.PUT("/slots/:id", coachHandler.UpdateSlot)
			coachGroup.POST("/slots/:id/deactivate", coachHandler.DeactivateSlot)

			// Session mutations (simple field writes, outside the capacity invariant)
			coachGroup.POST("/sessions/:id/cancel", coachHandler.CancelSession)
			coachGroup.PUT("/sessions/:id", coachHandler.UpdateSession)
			coachGroup.GET("/sessions/:id/bookings", coachHandler.GetSessionRoster)

			// Attendance
			coachGroup.POST("/bookings/:id/checkin", coachHandler.CheckIn)

			// Announcements & reminders
			coachGroup.PUT("/announcement", coachHandler.PostAnnouncement)
			coachGroup.POST("/reminders/run", coachHandler.RunReminders)
		}
	}
}
