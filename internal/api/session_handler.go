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

// SessionHandler serves the schedule views.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// GetWeek lists the sessions of one Monday-aligned week. The coach's view
// materializes the week first, so opening the schedule is what brings new
// sessions into existence; members only read what already exists.
//
// GET /api/v1/sessions/week?start=YYYY-MM-DD (start optional, defaults to
// the current week)
func (h *SessionHandler) GetWeek(c *gin.Context) {
	weekStart := time.Now()
	if startParam := c.Query("start"); startParam != "" {
		parsed, err := time.Parse(domain.ISODateLayout, startParam)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid start date %q, expected YYYY-MM-DD", startParam))
			return
		}
		weekStart = parsed
	}

	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return
	}
	materialize := role == domain.RoleCoach

	sessions, err := h.sessionService.GetWeekSessions(c.Request.Context(), weekStart, materialize)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load week sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns one session by id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load session")
		}
		return
	}

	c.JSON(http.StatusOK, session)
}
