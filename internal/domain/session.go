package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionStatus type for the session lifecycle
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCancelled SessionStatus = "cancelled" // Terminal for booking purposes; coach-only transition
)

// Errors returned by the capacity state transitions. These are the
// user-facing rejection reasons for a reservation attempt.
var (
	ErrSessionCancelled = errors.New("session has been cancelled")
	ErrSessionFull      = errors.New("session is full")
)

// Session is a concrete bookable class instance on one calendar date,
// materialized from a Slot. Its ID is deterministic ({slotId}_{date}) so the
// same (slot, date) pair can never yield two sessions. Time/location/capacity
// are copied from the slot at materialization time; later slot edits do not
// retroactively change existing sessions.
type Session struct {
	ID           string        `bson:"_id" json:"id"` // "{slotId}_{YYYY-MM-DD}"
	SlotID       string        `bson:"slotId" json:"slotId"`
	Date         string        `bson:"date" json:"date"` // "YYYY-MM-DD"
	StartTime    string        `bson:"startTime" json:"startTime"`
	EndTime      string        `bson:"endTime" json:"endTime"`
	Location     string        `bson:"location" json:"location"`
	MaxCapacity  int           `bson:"maxCapacity" json:"maxCapacity"`
	BookingCount int           `bson:"bookingCount" json:"bookingCount"` // Denormalized count of confirmed bookings
	Status       SessionStatus `bson:"status" json:"status"`
	CancelNote   string        `bson:"cancelNote,omitempty" json:"cancelNote,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}

// SessionID derives the deterministic session id for a slot on a date.
func SessionID(slotID string, date time.Time) string {
	return fmt.Sprintf("%s_%s", slotID, ToISODate(date))
}

// IsFull reports whether the session has reached capacity. "Full" is derived
// state, never stored.
func (s *Session) IsFull() bool {
	return s.BookingCount >= s.MaxCapacity
}

// Reserve applies the capacity transition for one new confirmed booking.
// Invariant: while Status == scheduled, 0 <= BookingCount <= MaxCapacity.
// Callers must run this inside whatever serializes access to the session
// (the ledger's transaction).
func (s *Session) Reserve() error {
	if s.Status == SessionCancelled {
		return ErrSessionCancelled
	}
	if s.IsFull() {
		return ErrSessionFull
	}
	s.BookingCount++
	return nil
}

// Release applies the capacity transition for one cancelled booking and
// reports whether the session was at capacity beforehand (used by callers to
// decide whether a spot-freed broadcast is warranted). The decrement is
// clamped at zero: a double-release must never surface a negative count.
func (s *Session) Release() (wasAtCapacity bool) {
	wasAtCapacity = s.IsFull()
	s.BookingCount--
	if s.BookingCount < 0 {
		s.BookingCount = 0
	}
	return wasAtCapacity
}
