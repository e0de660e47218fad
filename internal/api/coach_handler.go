package api

import (
	"errors"
	"fmt"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CoachHandler groups the coach-only operations: slot management, session
// mutations, attendance and announcements.
type CoachHandler struct {
	slotService         service.SlotService
	sessionService      service.SessionService
	bookingService      service.BookingService
	announcementService service.AnnouncementService
	notificationService service.NotificationService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(
	slotService service.SlotService,
	sessionService service.SessionService,
	bookingService service.BookingService,
	announcementService service.AnnouncementService,
	notificationService service.NotificationService,
) *CoachHandler {
	return &CoachHandler{
		slotService:         slotService,
		sessionService:      sessionService,
		bookingService:      bookingService,
		announcementService: announcementService,
		notificationService: notificationService,
	}
}

// --- Request Structs ---

type SlotRequest struct {
	DayOfWeek   *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	Location    string `json:"location" binding:"required"`
	MaxCapacity int    `json:"maxCapacity" binding:"required,min=1"`
	Active      *bool  `json:"active"`
}

type CancelSessionRequest struct {
	CancelNote string `json:"cancelNote"`
}

type UpdateSessionRequest struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Location  string `json:"location" binding:"required"`
}

type CheckInRequest struct {
	CheckedIn *bool `json:"checkedIn" binding:"required"`
}

type AnnouncementRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- Slot Management ---

// CreateSlot adds a new weekly slot template.
func (h *CoachHandler) CreateSlot(c *gin.Context) {
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	slot, err := h.slotService.CreateSlot(c.Request.Context(), *req.DayOfWeek, req.StartTime, req.EndTime, req.Location, req.MaxCapacity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlot) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create slot")
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// GetSlots lists every slot template.
func (h *CoachHandler) GetSlots(c *gin.Context) {
	slots, err := h.slotService.GetSlots(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load slots")
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// UpdateSlot edits a slot template.
func (h *CoachHandler) UpdateSlot(c *gin.Context) {
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	slot, err := h.slotService.UpdateSlot(c.Request.Context(), c.Param("id"), *req.DayOfWeek, req.StartTime, req.EndTime, req.Location, req.MaxCapacity, active)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidSlot):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update slot")
		}
		return
	}

	c.JSON(http.StatusOK, slot)
}

// DeactivateSlot retires a slot from future weeks.
func (h *CoachHandler) DeactivateSlot(c *gin.Context) {
	if err := h.slotService.DeactivateSlot(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to deactivate slot")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Slot deactivated"})
}

// --- Session Mutations ---

// CancelSession marks a session cancelled and notifies booked members.
func (h *CoachHandler) CancelSession(c *gin.Context) {
	var req CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.sessionService.CancelSession(c.Request.Context(), c.Param("id"), req.CancelNote); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to cancel session")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session cancelled"})
}

// UpdateSession edits a session's time/location fields.
func (h *CoachHandler) UpdateSession(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err := h.sessionService.UpdateSessionDetails(c.Request.Context(), c.Param("id"), req.StartTime, req.EndTime, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidSlot):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update session")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session updated"})
}

// GetSessionRoster lists the confirmed bookings on a session.
func (h *CoachHandler) GetSessionRoster(c *gin.Context) {
	bookings, err := h.bookingService.GetSessionRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load session roster")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CheckIn toggles attendance on a confirmed booking.
func (h *CoachHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.bookingService.SetCheckedIn(c.Request.Context(), c.Param("id"), *req.CheckedIn); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update check-in")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Check-in updated"})
}

// --- Announcements & Reminders ---

// PostAnnouncement replaces the pinned announcement and broadcasts it.
func (h *CoachHandler) PostAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	userName := getUserNameFromContext(c)

	announcement, err := h.announcementService.PostAnnouncement(c.Request.Context(), req.Message, userName, userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to post announcement")
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

// RunReminders manually triggers the daily reminder sweep for today.
// The scheduled job calls the same service path.
func (h *CoachHandler) RunReminders(c *gin.Context) {
	today := domain.ToISODate(time.Now())
	if err := h.notificationService.SendDailyReminders(c.Request.Context(), today); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to run reminder sweep")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminders sent"})
}
