// Package project provides owner-scoped project lifecycle operations.
//
// Every read and write filters on the owning user id; records belonging to
// another identity are indistinguishable from absent ones.
package project

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vibetracker/vibetracker/internal/models"
	"github.com/vibetracker/vibetracker/internal/steps"
)

// Sentinel errors shared by the project-derived stores.
var (
	// ErrNotFound means the record is absent or owned by someone else.
	ErrNotFound = errors.New("project: not found")
	// ErrInvalidID means the identifier is malformed and can never match.
	ErrInvalidID = errors.New("project: invalid id")
	// ErrNameRequired means a create call arrived without a name.
	ErrNameRequired = errors.New("project: name is required")
)

// ValidateID checks that id is a well-formed project identifier.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// UpdateOpts holds the patchable project fields. Nil pointers are ignored,
// so omitting a field and sending it null behave identically.
type UpdateOpts struct {
	Name        *string
	Description *string
}

// List returns the user's projects ordered by most recently updated.
func List(db *gorm.DB, userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Create inserts a new project and provisions one StepProgress row per
// catalog step, all not_started at 0%. The created project is re-read after
// the write so callers always see the stored shape.
func Create(db *gorm.DB, catalog *steps.Catalog, userID, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	id := uuid.NewString()
	err := db.Transaction(func(tx *gorm.DB) error {
		proj := models.Project{
			ID:          id,
			UserID:      userID,
			Name:        name,
			Description: description,
		}
		if err := tx.Create(&proj).Error; err != nil {
			return fmt.Errorf("project: create: %w", err)
		}

		templates := catalog.Steps()
		if len(templates) == 0 {
			return nil
		}
		rows := make([]models.StepProgress, 0, len(templates))
		for _, s := range templates {
			rows = append(rows, models.StepProgress{
				ProjectID:  id,
				StepNumber: s.Number,
				Status:     models.StatusNotStarted,
				Reminders:  datatypes.JSON("[]"),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("project: provision steps: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, userID, id)
}

// Get returns the project if it exists and belongs to the user.
func Get(db *gorm.DB, userID, projectID string) (*models.Project, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	var proj models.Project
	if err := db.Where("id = ? AND user_id = ?", projectID, userID).First(&proj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("project: get %s: %w", projectID, err)
	}
	return &proj, nil
}

// Update applies the non-nil fields of opts and stamps updated_at. An empty
// patch degenerates to a plain re-read.
func Update(db *gorm.DB, userID, projectID string, opts UpdateOpts) (*models.Project, error) {
	if _, err := Get(db, userID, projectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if opts.Name != nil {
		updates["name"] = *opts.Name
	}
	if opts.Description != nil {
		updates["description"] = *opts.Description
	}
	if len(updates) == 0 {
		return Get(db, userID, projectID)
	}

	err := db.Model(&models.Project{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("project: update %s: %w", projectID, err)
	}
	return Get(db, userID, projectID)
}

// Delete removes the project and all its step progress rows. The
// owner-scoped lookup gates the cascade, and the step rows are removed
// before the project itself.
func Delete(db *gorm.DB, userID, projectID string) error {
	if err := ValidateID(projectID); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var proj models.Project
		if err := tx.Where("id = ? AND user_id = ?", projectID, userID).First(&proj).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("project: delete %s: %w", projectID, err)
		}
		// Step rows go first so a referential constraint on project_id
		// never blocks the parent delete.
		if err := tx.Where("project_id = ?", projectID).Delete(&models.StepProgress{}).Error; err != nil {
			return fmt.Errorf("project: cascade delete steps for %s: %w", projectID, err)
		}
		if err := tx.Where("id = ?", projectID).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("project: delete %s: %w", projectID, err)
		}
		return nil
	})
}
