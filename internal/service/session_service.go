package service

import (
	"context"
	"errors"
	"time"

	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"
)

// SessionFanOut receives coach-driven session transitions after they are
// persisted. Best-effort, same contract as FanOut.
type SessionFanOut interface {
	SessionCancelled(ctx context.Context, session *domain.Session)
}

// --- Service Interface ---

// SessionService owns session materialization and the coach's session
// mutations. Materialization is upstream of the booking ledger: a booking
// can only be made against a session this service has created.
type SessionService interface {
	// EnsureSessionsForWeek idempotently creates one session per (active
	// slot, date) pair inside the Monday-aligned 7-day window starting at
	// weekStart. Existing sessions are never touched, so repeated and
	// concurrent invocations are safe.
	EnsureSessionsForWeek(ctx context.Context, slots []domain.Slot, weekStart time.Time) error
	// GetWeekSessions lists the week's sessions. With materialize set, the
	// week is ensured first (the coach's schedule view does this).
	GetWeekSessions(ctx context.Context, weekStart time.Time, materialize bool) ([]domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	// CancelSession marks a session cancelled with an optional note and
	// fans out to the booked members. Terminal for booking purposes.
	CancelSession(ctx context.Context, id, cancelNote string) error
	// UpdateSessionDetails edits display fields only; capacity and count
	// are out of reach by design of the repository method.
	UpdateSessionDetails(ctx context.Context, id, startTime, endTime, location string) error
}

// --- Service Implementation ---

type sessionService struct {
	sessionRepo repository.SessionRepository
	slotRepo    repository.SlotRepository
	fanOut      SessionFanOut
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	slotRepo repository.SlotRepository,
	fanOut SessionFanOut,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		slotRepo:    slotRepo,
		fanOut:      fanOut,
	}
}

// EnsureSessionsForWeek materializes the week. For each active slot the
// calendar date inside the window is computed from the slot's dayOfWeek
// (Monday lands on day 0 of the window, Sunday on day 6), and a session
// with the deterministic id {slotId}_{date} is created if absent. The
// deterministic id plus the store's insert-if-absent semantics are the sole
// concurrency guard; no transaction is needed because the worst outcome of
// a race is both callers observing "already exists".
func (s *sessionService) EnsureSessionsForWeek(ctx context.Context, slots []domain.Slot, weekStart time.Time) error {
	for _, slot := range slots {
		if !slot.Active {
			continue
		}

		date := domain.DateForDayOfWeek(weekStart, slot.DayOfWeek)
		session := &domain.Session{
			ID:           domain.SessionID(slot.ID, date),
			SlotID:       slot.ID,
			Date:         domain.ToISODate(date),
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
			Location:     slot.Location,
			MaxCapacity:  slot.MaxCapacity, // Copied now; later slot edits don't propagate
			BookingCount: 0,
			Status:       domain.SessionScheduled,
		}

		if _, err := s.sessionRepo.CreateIfAbsent(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// GetWeekSessions lists sessions for the Monday-aligned week containing
// weekStart, materializing it first when asked to.
func (s *sessionService) GetWeekSessions(ctx context.Context, weekStart time.Time, materialize bool) ([]domain.Session, error) {
	weekStart = domain.WeekStart(weekStart)

	if materialize {
		slots, err := s.slotRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureSessionsForWeek(ctx, slots, weekStart); err != nil {
			return nil, err
		}
	}

	from := domain.ToISODate(weekStart)
	to := domain.ToISODate(weekStart.AddDate(0, 0, 6))
	return s.sessionRepo.GetByDateRange(ctx, from, to)
}

// GetSession fetches one session by id.
func (s *sessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// CancelSession marks the session cancelled and notifies booked members.
// The bookingCount freezes at its current value; the ledger rejects further
// reservations against a cancelled session.
func (s *sessionService) CancelSession(ctx context.Context, id, cancelNote string) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Status == domain.SessionCancelled {
		return nil // Already cancelled; don't re-notify
	}

	if err := s.sessionRepo.Cancel(ctx, id, cancelNote); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	session.Status = domain.SessionCancelled
	session.CancelNote = cancelNote

	go func() {
		fanCtx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
		defer cancel()
		s.fanOut.SessionCancelled(fanCtx, session)
	}()

	return nil
}

// UpdateSessionDetails edits the session's time/location fields.
func (s *sessionService) UpdateSessionDetails(ctx context.Context, id, startTime, endTime, location string) error {
	if err := validateTime(startTime); err != nil {
		return err
	}
	if err := validateTime(endTime); err != nil {
		return err
	}

	err := s.sessionRepo.UpdateDetails(ctx, id, startTime, endTime, location)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
