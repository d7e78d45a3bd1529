// Package identity binds external identity claims to local user records.
package identity

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vibetracker/vibetracker/internal/auth"
	"github.com/vibetracker/vibetracker/internal/models"
)

// EnsureUser idempotently upserts the local user record for the given
// claims: first sight sets created_at, every call refreshes email, display
// name and last_seen_at. Claims without a subject are a no-op so a degraded
// credential never fails the surrounding request.
func EnsureUser(db *gorm.DB, claims auth.Claims) error {
	if claims.Subject == "" {
		return nil
	}

	now := time.Now().UTC()
	user := models.User{
		FirebaseUID: claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		CreatedAt:   now,
		LastSeenAt:  now,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "firebase_uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "last_seen_at"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("identity: ensure user %s: %w", claims.Subject, err)
	}
	return nil
}
