package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType type for the kinds of in-app messages
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationSessionCancelled NotificationType = "session_cancelled"
	NotificationAnnouncement     NotificationType = "announcement"
	NotificationReminder         NotificationType = "reminder"
	NotificationSpotAvailable    NotificationType = "spot_available"
)

// BroadcastUserID is the sentinel recipient meaning "every user".
const BroadcastUserID = "all"

// Notification is a fire-and-forget in-app message. UserID is either a
// specific user id (hex) or the BroadcastUserID sentinel. Only the reading
// user ever mutates it (the read flag).
type Notification struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"userId" json:"userId"`
	Type             NotificationType   `bson:"type" json:"type"`
	Title            string             `bson:"title" json:"title"`
	Message          string             `bson:"message" json:"message"`
	Read             bool               `bson:"read" json:"read"`
	RelatedSessionID string             `bson:"relatedSessionId,omitempty" json:"relatedSessionId,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
