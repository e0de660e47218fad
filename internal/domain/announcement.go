package domain

import "time"

// Announcement is the single "current" message the coach pins for everyone.
// Posting a new one replaces the previous; the fan-out notifies every
// opted-in user except the poster.
type Announcement struct {
	Message     string    `bson:"message" json:"message"`
	PostedBy    string    `bson:"postedBy" json:"postedBy"` // Display name
	PostedByUID string    `bson:"postedByUid" json:"postedByUid"`
	PostedAt    time.Time `bson:"postedAt" json:"postedAt"`
}
