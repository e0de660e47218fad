package domain

import (
	"fmt"
	"time"
)

// BookingStatus type for the booking lifecycle
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is one member's reservation of one session. The ID is the
// deterministic pair {userId}_{sessionId}, so a user holds at most one
// booking per session: re-booking after a cancellation overwrites the same
// document rather than creating a duplicate. Cancelled bookings are kept,
// never deleted, to preserve history.
//
// Session fields are snapshotted at booking time so history display stays
// stable even if the coach later edits the session.
type Booking struct {
	ID               string        `bson:"_id" json:"id"` // "{userId}_{sessionId}"
	UserID           string        `bson:"userId" json:"userId"`
	UserName         string        `bson:"userName" json:"userName"`
	SessionID        string        `bson:"sessionId" json:"sessionId"`
	SessionDate      string        `bson:"sessionDate" json:"sessionDate"`
	SessionStartTime string        `bson:"sessionStartTime" json:"sessionStartTime"`
	SessionEndTime   string        `bson:"sessionEndTime" json:"sessionEndTime"`
	SessionLocation  string        `bson:"sessionLocation" json:"sessionLocation"`
	Status           BookingStatus `bson:"status" json:"status"`
	CheckedIn        bool          `bson:"checkedIn" json:"checkedIn"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
}

// BookingID derives the deterministic booking id for a user on a session.
func BookingID(userID, sessionID string) string {
	return fmt.Sprintf("%s_%s", userID, sessionID)
}

// NewBooking builds a confirmed booking for the given user against the given
// session, snapshotting the session's display fields.
func NewBooking(userID, userName string, session *Session) *Booking {
	return &Booking{
		ID:               BookingID(userID, session.ID),
		UserID:           userID,
		UserName:         userName,
		SessionID:        session.ID,
		SessionDate:      session.Date,
		SessionStartTime: session.StartTime,
		SessionEndTime:   session.EndTime,
		SessionLocation:  session.Location,
		Status:           BookingConfirmed,
		CheckedIn:        false,
		CreatedAt:        time.Now().UTC(),
	}
}
