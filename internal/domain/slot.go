package domain

import "time"

// Slot is a recurring weekly class template managed by the coach.
// Slots are never deleted, only deactivated; deactivating a slot does not
// affect sessions that were already materialized from it.
type Slot struct {
	ID          string    `bson:"_id" json:"id"` // UUID string, part of derived session ids
	DayOfWeek   int       `bson:"dayOfWeek" json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime   string    `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime     string    `bson:"endTime" json:"endTime"`     // "HH:mm"
	Location    string    `bson:"location" json:"location"`
	MaxCapacity int       `bson:"maxCapacity" json:"maxCapacity"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
