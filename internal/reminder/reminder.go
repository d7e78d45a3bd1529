// Package reminder manages step reminders and their delivery.
package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vibetracker/vibetracker/internal/models"
	"github.com/vibetracker/vibetracker/internal/project"
)

// Create validates project ownership, inserts the reminder, and mirrors a
// denormalized summary onto the matching step-progress row so the project
// detail view needs no extra lookup. The step row is upserted if it does not
// exist yet, which makes out-of-range step numbers acceptable here. Both
// writes run in one transaction, reminder first.
func Create(db *gorm.DB, userID, projectID string, stepNumber int, remindAt time.Time, message string) (*models.Reminder, error) {
	if _, err := project.Get(db, userID, projectID); err != nil {
		return nil, err
	}

	rem := models.Reminder{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProjectID:  projectID,
		StepNumber: stepNumber,
		RemindAt:   remindAt,
		Message:    message,
		Sent:       false,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rem).Error; err != nil {
			return fmt.Errorf("reminder: create: %w", err)
		}
		summary := models.ReminderSummary{
			ID:       rem.ID,
			RemindAt: remindAt,
			Message:  message,
			Sent:     false,
		}
		if err := pushSummary(tx, projectID, stepNumber, summary); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

// List returns the user's reminders ordered by remind_at ascending.
func List(db *gorm.DB, userID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := db.Where("user_id = ?", userID).Order("remind_at ASC").Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("reminder: list: %w", err)
	}
	return reminders, nil
}

// pushSummary appends a summary to the step row's reminders list, creating
// the row with defaults when it does not exist.
func pushSummary(tx *gorm.DB, projectID string, stepNumber int, summary models.ReminderSummary) error {
	var row models.StepProgress
	err := tx.Where("project_id = ? AND step_number = ?", projectID, stepNumber).First(&row).Error
	switch {
	case err == nil:
		summaries, derr := decodeSummaries(row.Reminders)
		if derr != nil {
			return fmt.Errorf("reminder: decode summaries for step %d of %s: %w", stepNumber, projectID, derr)
		}
		summaries = append(summaries, summary)
		encoded, merr := json.Marshal(summaries)
		if merr != nil {
			return fmt.Errorf("reminder: encode summaries: %w", merr)
		}
		uerr := tx.Model(&models.StepProgress{}).
			Where("project_id = ? AND step_number = ?", projectID, stepNumber).
			Update("reminders", datatypes.JSON(encoded)).Error
		if uerr != nil {
			return fmt.Errorf("reminder: push summary to step %d of %s: %w", stepNumber, projectID, uerr)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		encoded, merr := json.Marshal([]models.ReminderSummary{summary})
		if merr != nil {
			return fmt.Errorf("reminder: encode summaries: %w", merr)
		}
		row = models.StepProgress{
			ProjectID:  projectID,
			StepNumber: stepNumber,
			Status:     models.StatusNotStarted,
			Reminders:  datatypes.JSON(encoded),
		}
		if cerr := tx.Create(&row).Error; cerr != nil {
			return fmt.Errorf("reminder: upsert step %d of %s: %w", stepNumber, projectID, cerr)
		}
		return nil
	default:
		return fmt.Errorf("reminder: load step %d of %s: %w", stepNumber, projectID, err)
	}
}

// decodeSummaries parses the denormalized reminder list, treating an empty
// column as an empty list.
func decodeSummaries(raw datatypes.JSON) ([]models.ReminderSummary, error) {
	if len(raw) == 0 {
		return []models.ReminderSummary{}, nil
	}
	var summaries []models.ReminderSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.ReminderSummary{}
	}
	return summaries, nil
}
