package repository

import (
	"kamenko/gym-app/internal/domain" // Import our defined domain models
	"context"                         // Standard for request-scoped deadlines, cancellation signals, etc.

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer (optional but good practice)
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	// Add more specific errors as needed
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data,
// including the per-user push endpoint registry.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	// Push endpoint registry. AddPushSubscription also flips
	// notificationsEnabled on; removal of the last endpoint does not, the
	// user has to disable explicitly.
	AddPushSubscription(ctx context.Context, userID primitive.ObjectID, sub domain.PushSubscription) error
	RemovePushSubscription(ctx context.Context, userID primitive.ObjectID, endpoint string) error
	SetNotificationsEnabled(ctx context.Context, userID primitive.ObjectID, enabled bool) error
}

// SlotRepository defines the interface for interacting with the coach's
// recurring weekly slot templates. Slots are never deleted, only deactivated.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	GetAll(ctx context.Context) ([]domain.Slot, error)
	Update(ctx context.Context, slot *domain.Slot) error
	SetActive(ctx context.Context, id string, active bool) error
}

// SessionRepository defines the interface for interacting with materialized
// session instances. Sessions are created once (deterministic id, create if
// absent) and never deleted; bookingCount is only ever touched by the
// BookingLedger.
type SessionRepository interface {
	// CreateIfAbsent inserts the session unless one with the same id already
	// exists. Returns true if a new session was created. This is the sole
	// concurrency guard for materialization: the store's insert-if-absent
	// semantics on the deterministic _id.
	CreateIfAbsent(ctx context.Context, session *domain.Session) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByDateRange(ctx context.Context, fromDate, toDate string) ([]domain.Session, error)
	GetScheduledByDate(ctx context.Context, date string) ([]domain.Session, error)
	// Coach-only field writes, outside the capacity invariant.
	Cancel(ctx context.Context, id string, cancelNote string) error
	UpdateDetails(ctx context.Context, id, startTime, endTime, location string) error
}

// BookingRepository defines the read/auxiliary interface for bookings.
// Creation and status flips go through the BookingLedger exclusively.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.Booking, error)
	GetConfirmedBySessionID(ctx context.Context, sessionID string) ([]domain.Booking, error)
	SetCheckedIn(ctx context.Context, id string, checkedIn bool) error
}

// BookingLedger is the capacity-safe reservation core. Both operations run
// as one atomic transaction over the session and booking documents: no
// execution may observe a confirmed booking without its matching
// bookingCount increment, or push bookingCount above maxCapacity, however
// many reservations race on the same session. Conflicting concurrent
// commits are retried by the underlying store until the transaction lands
// or a terminal precondition (cancelled/full) is seen on a fresh read.
type BookingLedger interface {
	// Reserve fails with ErrNotFound (session), domain.ErrSessionCancelled
	// or domain.ErrSessionFull; otherwise it writes the confirmed booking
	// (deterministic id, overwriting a previously cancelled one) and
	// increments bookingCount, atomically.
	Reserve(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error)
	// Release cancels the booking (never deletes) and decrements
	// bookingCount clamped at zero, atomically. Reports whether the session
	// was at capacity before the decrement, read inside the same
	// transaction. Releasing an already-cancelled booking is a no-op.
	Release(ctx context.Context, bookingID string) (wasAtCapacity bool, err error)
}

// NotificationRepository defines the interface for the in-app notification
// feed. Notifications are written by the fan-out collaborators and mutated
// only by the reading user (the read flag).
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	// GetForUser returns the newest notifications addressed to the user or
	// broadcast to "all", newest first.
	GetForUser(ctx context.Context, userID string, limit int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// AnnouncementRepository holds the single current announcement document.
type AnnouncementRepository interface {
	Get(ctx context.Context) (*domain.Announcement, error)
	Set(ctx context.Context, announcement *domain.Announcement) error
}
