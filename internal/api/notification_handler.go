package api

import (
	"errors"
	"fmt"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler exposes the notification feed and the push
// subscription registry.
type NotificationHandler struct {
	notificationService service.NotificationService
	announcementService service.AnnouncementService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	notificationService service.NotificationService,
	announcementService service.AnnouncementService,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		announcementService: announcementService,
	}
}

// --- Handler Methods ---

// GetFeed returns the newest notifications visible to the user.
func (h *NotificationHandler) GetFeed(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	notifications, err := h.notificationService.GetFeed(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead flags a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		abortWithError(c, http.StatusNotFound, "Notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead flags every unread notification visible to the user.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Subscribe registers a push endpoint the browser just created.
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var sub domain.PushSubscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.notificationService.Subscribe(c.Request.Context(), userID, sub); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to register push subscription")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Push subscription registered"})
}

// UnsubscribeRequest optionally names the endpoint to drop; with no
// endpoint, notifications are disabled but endpoints are kept.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe removes a push endpoint and/or disables notifications.
func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	userID, err := currentUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.notificationService.Unsubscribe(c.Request.Context(), userID, req.Endpoint); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to disable notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications disabled"})
}

// GetAnnouncement returns the currently pinned announcement.
func (h *NotificationHandler) GetAnnouncement(c *gin.Context) {
	announcement, err := h.announcementService.GetAnnouncement(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoAnnouncement) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load announcement")
		}
		return
	}

	c.JSON(http.StatusOK, announcement)
}

// currentUserObjectID parses the JWT user id into an ObjectID.
func currentUserObjectID(c *gin.Context) (primitive.ObjectID, error) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(userID)
}
