package service

import (
	"context"
	"errors"
	"time"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotYourBooking  = errors.New("booking does not belong to this user")
)

// How long after-commit fan-out gets to run. It executes detached from the
// request context: the caller's disconnect must not cancel notifications
// for a booking that already committed.
const fanOutTimeout = 30 * time.Second

// FanOut receives ledger state transitions after they commit. Implementations
// are best-effort: they log their own failures and never return errors,
// because a booking that committed is a success no matter what happens to
// its notifications.
type FanOut interface {
	BookingConfirmed(ctx context.Context, booking *domain.Booking)
	BookingCancelled(ctx context.Context, booking *domain.Booking, wasAtCapacity bool)
}

// --- Service Interface ---

// BookingService is the member-facing surface of the booking ledger, plus
// the coach's roster/attendance reads. All capacity-relevant writes funnel
// through the ledger transaction; this service adds ownership checks, error
// mapping and the decoupled notification fan-out.
type BookingService interface {
	Reserve(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error)
	Release(ctx context.Context, bookingID, userID string) error
	GetMyBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	GetSessionRoster(ctx context.Context, sessionID string) ([]domain.Booking, error)
	SetCheckedIn(ctx context.Context, bookingID string, checkedIn bool) error
}

// --- Service Implementation ---

type bookingService struct {
	ledger      repository.BookingLedger
	bookingRepo repository.BookingRepository
	fanOut      FanOut
}

// NewBookingService creates a new instance of bookingService.
func NewBookingService(
	ledger repository.BookingLedger,
	bookingRepo repository.BookingRepository,
	fanOut FanOut,
) BookingService {
	return &bookingService{
		ledger:      ledger,
		bookingRepo: bookingRepo,
		fanOut:      fanOut,
	}
}

// Reserve books a spot on the session for the user. On success the
// confirmation fan-out runs asynchronously; its outcome cannot affect the
// reservation, which has already committed.
func (s *bookingService) Reserve(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error) {
	if sessionID == "" || userID == "" {
		return nil, errors.New("session ID and user ID are required")
	}

	booking, err := s.ledger.Reserve(ctx, sessionID, userID, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		// domain.ErrSessionCancelled / domain.ErrSessionFull pass through
		// untouched; they are the user-facing rejection reasons.
		return nil, err
	}

	go s.runFanOut(func(fanCtx context.Context) {
		s.fanOut.BookingConfirmed(fanCtx, booking)
	})

	return booking, nil
}

// Release cancels the user's booking. Releasing an already-cancelled booking
// is an idempotent no-op (no decrement, no fan-out, no error).
func (s *bookingService) Release(ctx context.Context, bookingID, userID string) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	if booking.UserID != userID {
		return ErrNotYourBooking
	}
	if booking.Status == domain.BookingCancelled {
		// Already released; the ledger would treat this as a no-op too, but
		// skipping it here also suppresses a duplicate fan-out.
		return nil
	}

	wasAtCapacity, err := s.ledger.Release(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	go s.runFanOut(func(fanCtx context.Context) {
		s.fanOut.BookingCancelled(fanCtx, booking, wasAtCapacity)
	})

	return nil
}

// GetMyBookings returns the member's full booking history, snapshots intact.
func (s *bookingService) GetMyBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookingRepo.GetByUserID(ctx, userID)
}

// GetSessionRoster returns the confirmed bookings on a session for the
// coach's attendance view.
func (s *bookingService) GetSessionRoster(ctx context.Context, sessionID string) ([]domain.Booking, error) {
	return s.bookingRepo.GetConfirmedBySessionID(ctx, sessionID)
}

// SetCheckedIn toggles attendance on a confirmed booking.
func (s *bookingService) SetCheckedIn(ctx context.Context, bookingID string, checkedIn bool) error {
	err := s.bookingRepo.SetCheckedIn(ctx, bookingID, checkedIn)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	return err
}

// runFanOut executes one fan-out callback on a fresh detached context.
func (s *bookingService) runFanOut(fn func(ctx context.Context)) {
	fanCtx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
	defer cancel()
	fn(fanCtx)
}
