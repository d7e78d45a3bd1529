package models

import "time"

// User is the local record for an externally authenticated identity.
// It is never created by an explicit API call; the identity binder upserts
// it on every authenticated request, keyed by the Firebase UID.
type User struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	FirebaseUID string `gorm:"size:128;uniqueIndex;not null"`
	Email       string `gorm:"size:255"`
	DisplayName string `gorm:"size:255"`
	CreatedAt   time.Time
	LastSeenAt  time.Time
}
