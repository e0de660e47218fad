package api

import (
	"errors"
	"fmt"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the member-facing booking ledger operations.
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// --- Request Structs ---

type ReserveRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// --- Handler Methods ---

// Reserve books a spot on a session for the authenticated user.
// All four ledger rejections surface here with distinct statuses so the UI
// can show a meaningful reason; a commit failure after the store's internal
// retries is a plain 500.
func (h *BookingHandler) Reserve(c *gin.Context) {
	var req ReserveRequest
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

	booking, err := h.bookingService.Reserve(c.Request.Context(), req.SessionID, userID, userName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrSessionCancelled):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrSessionFull):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Reservation failed")
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// Release cancels the authenticated user's booking.
func (h *BookingHandler) Release(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	err = h.bookingService.Release(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotYourBooking):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Cancellation failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// GetMyBookings returns the authenticated user's booking history.
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	bookings, err := h.bookingService.GetMyBookings(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
