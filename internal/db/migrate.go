package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vibetracker/vibetracker/internal/models"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.StepProgress{},
		&models.Reminder{},
	}
}

// AutoMigrate creates or updates all tables and their indexes, including the
// unique (project_id, step_number) constraint that serializes concurrent
// step upserts.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
