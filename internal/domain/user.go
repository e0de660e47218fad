package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach  Role = "coach"
	RoleMember Role = "member"
)

// PushSubscription is one browser push endpoint registered for a user,
// in the standard Web Push JSON shape.
type PushSubscription struct {
	Endpoint string               `bson:"endpoint" json:"endpoint"`
	Keys     PushSubscriptionKeys `bson:"keys" json:"keys"`
}

type PushSubscriptionKeys struct {
	P256dh string `bson:"p256dh" json:"p256dh"`
	Auth   string `bson:"auth" json:"auth"`
}

// User represents a user in the system (either the Coach or a Member).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Push notification state. Subscriptions accumulate as the user grants
	// permission on different browsers/devices; stale endpoints are pruned
	// when the push gateway reports them gone.
	NotificationsEnabled bool               `bson:"notificationsEnabled" json:"notificationsEnabled"`
	PushSubscriptions    []PushSubscription `bson:"pushSubscriptions,omitempty" json:"pushSubscriptions,omitempty"`
}

// Helper methods (Optional but can be useful)
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}
