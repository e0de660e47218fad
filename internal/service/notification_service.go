package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/push"
	"kamenko/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed page size; mirrors what the notification panel renders.
const notificationFeedLimit = 20

// --- Service Interface ---

// NotificationService owns the in-app notification feed, the per-user push
// endpoint registry, and the fan-out reacting to ledger/session/announcement
// transitions. Fan-out methods are best-effort by contract: they log and
// count failures but never report them to the caller, because the state
// change that triggered them has already committed.
type NotificationService interface {
	FanOut
	SessionFanOut

	// Feed
	GetFeed(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error

	// Push endpoint registry
	Subscribe(ctx context.Context, userID primitive.ObjectID, sub domain.PushSubscription) error
	Unsubscribe(ctx context.Context, userID primitive.ObjectID, endpoint string) error
	DisableNotifications(ctx context.Context, userID primitive.ObjectID) error

	// Announcements
	AnnouncementPosted(ctx context.Context, announcement *domain.Announcement)

	// SendDailyReminders delivers a "session today" reminder to every member
	// holding a confirmed booking on one of today's scheduled sessions.
	SendDailyReminders(ctx context.Context, date string) error
}

// --- Service Implementation ---

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	bookingRepo      repository.BookingRepository
	dispatcher       push.Dispatcher
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	bookingRepo repository.BookingRepository,
	dispatcher push.Dispatcher,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		bookingRepo:      bookingRepo,
		dispatcher:       dispatcher,
	}
}

// === Feed ===

// GetFeed returns the newest notifications visible to the user (their own
// plus broadcasts).
func (s *notificationService) GetFeed(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notificationRepo.GetForUser(ctx, userID, notificationFeedLimit)
}

// MarkRead flags one notification as read.
func (s *notificationService) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	err := s.notificationRepo.MarkRead(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.New("notification not found")
	}
	return err
}

// MarkAllRead flags every unread notification visible to the user.
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// === Push endpoint registry ===

// Subscribe registers a push endpoint the user just granted permission for.
func (s *notificationService) Subscribe(ctx context.Context, userID primitive.ObjectID, sub domain.PushSubscription) error {
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return errors.New("subscription endpoint and keys are required")
	}
	return s.userRepo.AddPushSubscription(ctx, userID, sub)
}

// Unsubscribe removes one endpoint and disables notifications.
func (s *notificationService) Unsubscribe(ctx context.Context, userID primitive.ObjectID, endpoint string) error {
	if endpoint != "" {
		if err := s.userRepo.RemovePushSubscription(ctx, userID, endpoint); err != nil {
			return err
		}
	}
	return s.userRepo.SetNotificationsEnabled(ctx, userID, false)
}

// DisableNotifications flips the opt-in flag off without touching endpoints.
func (s *notificationService) DisableNotifications(ctx context.Context, userID primitive.ObjectID) error {
	return s.userRepo.SetNotificationsEnabled(ctx, userID, false)
}

// === Fan-out ===

// BookingConfirmed notifies the booking member in-app and the coach both
// in-app and by push.
func (s *notificationService) BookingConfirmed(ctx context.Context, booking *domain.Booking) {
	// Member's own confirmation, feed only
	s.createNotification(ctx, &domain.Notification{
		UserID:           booking.UserID,
		Type:             domain.NotificationBookingConfirmed,
		Title:            "Booking Confirmed",
		Message:          fmt.Sprintf("Your %s session on %s is booked!", booking.SessionStartTime, booking.SessionDate),
		RelatedSessionID: booking.SessionID,
	})

	// Coach gets a feed entry plus push
	title := "New Booking"
	message := fmt.Sprintf("%s booked the %s session on %s.", memberName(booking), booking.SessionStartTime, booking.SessionDate)
	s.notifyCoaches(ctx, domain.NotificationBookingConfirmed, title, message, booking.SessionID)
}

// BookingCancelled notifies the coach, and broadcasts a spot-freed message
// when the release opened up a previously full session.
func (s *notificationService) BookingCancelled(ctx context.Context, booking *domain.Booking, wasAtCapacity bool) {
	if wasAtCapacity {
		// Informational broadcast; everyone sees a spot opened up.
		s.createNotification(ctx, &domain.Notification{
			UserID:           domain.BroadcastUserID,
			Type:             domain.NotificationSpotAvailable,
			Title:            "Spot Available",
			Message:          fmt.Sprintf("A spot opened up for the %s session on %s!", booking.SessionStartTime, booking.SessionDate),
			RelatedSessionID: booking.SessionID,
		})
	}

	title := "Booking Cancelled"
	message := fmt.Sprintf("%s cancelled their %s session on %s.", memberName(booking), booking.SessionStartTime, booking.SessionDate)
	s.notifyCoaches(ctx, domain.NotificationBookingCancelled, title, message, booking.SessionID)
}

// SessionCancelled notifies every member holding a confirmed booking on the
// session, in-app and by push.
func (s *notificationService) SessionCancelled(ctx context.Context, session *domain.Session) {
	bookings, err := s.bookingRepo.GetConfirmedBySessionID(ctx, session.ID)
	if err != nil {
		log.Printf("ERROR: Session-cancelled fan-out: loading bookings for %s: %v", session.ID, err)
		return
	}

	note := ""
	if session.CancelNote != "" {
		note = fmt.Sprintf(" Note: %s", session.CancelNote)
	}
	title := "Session Cancelled"
	message := fmt.Sprintf("The %s session on %s has been cancelled.%s", session.StartTime, session.Date, note)

	for _, booking := range bookings {
		s.createNotification(ctx, &domain.Notification{
			UserID:           booking.UserID,
			Type:             domain.NotificationSessionCancelled,
			Title:            title,
			Message:          message,
			RelatedSessionID: session.ID,
		})
		s.pushToUserID(ctx, booking.UserID, title, message)
	}
}

// AnnouncementPosted broadcasts the new announcement in-app and pushes it to
// every opted-in user except the poster.
func (s *notificationService) AnnouncementPosted(ctx context.Context, announcement *domain.Announcement) {
	s.createNotification(ctx, &domain.Notification{
		UserID:  domain.BroadcastUserID,
		Type:    domain.NotificationAnnouncement,
		Title:   "New Announcement",
		Message: announcement.Message,
	})

	members, err := s.userRepo.GetByRole(ctx, domain.RoleMember)
	if err != nil {
		log.Printf("ERROR: Announcement fan-out: loading members: %v", err)
		return
	}
	coaches, err := s.userRepo.GetByRole(ctx, domain.RoleCoach)
	if err != nil {
		log.Printf("ERROR: Announcement fan-out: loading coaches: %v", err)
		coaches = nil
	}

	for _, user := range append(members, coaches...) {
		if user.ID.Hex() == announcement.PostedByUID {
			continue // The poster doesn't need to hear their own announcement
		}
		s.pushToUser(ctx, &user, "New Announcement", announcement.Message)
	}
}

// === Daily reminders ===

// SendDailyReminders walks today's scheduled sessions and reminds every
// member with a confirmed booking. Per-user delivery failures are logged
// and skipped, never aborting the sweep.
func (s *notificationService) SendDailyReminders(ctx context.Context, date string) error {
	sessions, err := s.sessionRepo.GetScheduledByDate(ctx, date)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		bookings, err := s.bookingRepo.GetConfirmedBySessionID(ctx, session.ID)
		if err != nil {
			log.Printf("ERROR: Reminder sweep: loading bookings for %s: %v", session.ID, err)
			continue
		}

		title := "Session Today"
		message := fmt.Sprintf("Your %s session is today!", session.StartTime)

		for _, booking := range bookings {
			s.createNotification(ctx, &domain.Notification{
				UserID:           booking.UserID,
				Type:             domain.NotificationReminder,
				Title:            title,
				Message:          message,
				RelatedSessionID: session.ID,
			})
			s.pushToUserID(ctx, booking.UserID, title, message)
		}
	}
	return nil
}

// === Internal helpers ===

// createNotification writes a feed document, logging instead of propagating
// failures.
func (s *notificationService) createNotification(ctx context.Context, notification *domain.Notification) {
	notification.CreatedAt = time.Now().UTC()
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("ERROR: Failed to create %s notification for %s: %v", notification.Type, notification.UserID, err)
	}
}

// notifyCoaches writes a feed entry and pushes to every coach account.
func (s *notificationService) notifyCoaches(ctx context.Context, notifType domain.NotificationType, title, message, sessionID string) {
	coaches, err := s.userRepo.GetByRole(ctx, domain.RoleCoach)
	if err != nil {
		log.Printf("ERROR: Fan-out: loading coaches: %v", err)
		return
	}

	for _, coach := range coaches {
		s.createNotification(ctx, &domain.Notification{
			UserID:           coach.ID.Hex(),
			Type:             notifType,
			Title:            title,
			Message:          message,
			RelatedSessionID: sessionID,
		})
		s.pushToUser(ctx, &coach, title, message)
	}
}

// pushToUserID resolves the user then delegates to pushToUser.
func (s *notificationService) pushToUserID(ctx context.Context, userID string, title, body string) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		log.Printf("ERROR: Push: invalid user id %q: %v", userID, err)
		return
	}
	user, err := s.userRepo.GetByID(ctx, objectID)
	if err != nil {
		log.Printf("ERROR: Push: loading user %s: %v", userID, err)
		return
	}
	s.pushToUser(ctx, user, title, body)
}

// pushToUser sends to every endpoint the user has on file, then prunes the
// ones the gateway reported permanently gone (404/410). Pruning failures
// are logged only; a dead endpoint will simply be reported again next time.
func (s *notificationService) pushToUser(ctx context.Context, user *domain.User, title, body string) {
	if !user.NotificationsEnabled || len(user.PushSubscriptions) == 0 {
		return
	}

	result := s.dispatcher.Send(ctx, user.PushSubscriptions, title, body)

	for _, endpoint := range result.StaleEndpoints {
		if err := s.userRepo.RemovePushSubscription(ctx, user.ID, endpoint); err != nil {
			log.Printf("ERROR: Failed to prune stale push endpoint for %s: %v", user.ID.Hex(), err)
		}
	}
}

// memberName falls back when the snapshot has no display name.
func memberName(booking *domain.Booking) string {
	if booking.UserName == "" {
		return "A member"
	}
	return booking.UserName
}
