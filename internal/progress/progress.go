// Package progress maintains per-step progress records and the derived
// overall completion of their project.
package progress

import (
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vibetracker/vibetracker/internal/models"
	"github.com/vibetracker/vibetracker/internal/project"
)

// Patch holds the patchable step-progress fields. Nil pointers are ignored;
// omitting a field and sending it null behave identically.
type Patch struct {
	Status          *string
	ProgressPercent *int
	Notes           *string
	CompletedAt     *time.Time
}

// Clamp bounds a progress percentage to [0, 100]. Out-of-range values are
// clamped, never rejected.
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ListStepProgress returns the project's step rows ordered by step number.
func ListStepProgress(db *gorm.DB, projectID string) ([]models.StepProgress, error) {
	var rows []models.StepProgress
	if err := db.Where("project_id = ?", projectID).Order("step_number ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("progress: list for %s: %w", projectID, err)
	}
	return rows, nil
}

// UpdateStepProgress applies a patch to one step of an owned project, then
// recomputes the project's overall progress from all of its steps.
//
// Patch semantics: progress_percent is clamped to [0,100]; a clamped value
// of exactly 100 infers status=completed unless the patch sets a status
// explicitly; a patch whose status lands on completed gets completed_at
// stamped unless it carries its own. The row is upserted by
// (project_id, step_number), so patching a step that has no row yet creates
// it; step numbers outside the catalog are accepted the same way.
//
// The upsert and the aggregate recompute run in one transaction, with the
// step write strictly before the aggregate that reads it.
func UpdateStepProgress(db *gorm.DB, userID, projectID string, stepNumber int, patch Patch) (*models.StepProgress, error) {
	if _, err := project.Get(db, userID, projectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.ProgressPercent != nil {
		percent := Clamp(*patch.ProgressPercent)
		updates["progress_percent"] = percent
		// Explicit status wins; the inference only fills a gap.
		if percent == 100 && patch.Status == nil {
			updates["status"] = models.StatusCompleted
		}
	}
	if patch.CompletedAt != nil {
		updates["completed_at"] = *patch.CompletedAt
	}
	if status, ok := updates["status"].(string); ok && status == models.StatusCompleted && patch.CompletedAt == nil {
		updates["completed_at"] = time.Now().UTC()
	}

	var row models.StepProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := upsertStep(tx, projectID, stepNumber, updates); err != nil {
			return err
		}
		if err := recomputeOverall(tx, projectID); err != nil {
			return err
		}
		if err := tx.Where("project_id = ? AND step_number = ?", projectID, stepNumber).First(&row).Error; err != nil {
			return fmt.Errorf("progress: reload step %d of %s: %w", stepNumber, projectID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// upsertStep inserts or patches the (projectID, stepNumber) row. The insert
// path starts from defaults with the patch applied; the conflict path
// applies only the patch fields.
func upsertStep(tx *gorm.DB, projectID string, stepNumber int, updates map[string]interface{}) error {
	row := models.StepProgress{
		ProjectID:  projectID,
		StepNumber: stepNumber,
		Status:     models.StatusNotStarted,
		Reminders:  datatypes.JSON("[]"),
	}
	if v, ok := updates["status"].(string); ok {
		row.Status = v
	}
	if v, ok := updates["progress_percent"].(int); ok {
		row.ProgressPercent = v
	}
	if v, ok := updates["notes"].(string); ok {
		row.Notes = v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		row.CompletedAt = &v
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "step_number"}},
		DoNothing: true,
	}
	if len(updates) > 0 {
		conflict.DoNothing = false
		conflict.DoUpdates = clause.Assignments(updates)
	}

	if err := tx.Clauses(conflict).Create(&row).Error; err != nil {
		return fmt.Errorf("progress: upsert step %d of %s: %w", stepNumber, projectID, err)
	}
	return nil
}

// recomputeOverall writes the rounded mean of all step percentages into the
// project and stamps its updated_at. It always reads every step row, not
// just the one touched.
func recomputeOverall(tx *gorm.DB, projectID string) error {
	var avg *float64
	err := tx.Model(&models.StepProgress{}).
		Where("project_id = ?", projectID).
		Select("AVG(progress_percent)").
		Scan(&avg).Error
	if err != nil {
		return fmt.Errorf("progress: aggregate for %s: %w", projectID, err)
	}

	overall := 0
	if avg != nil {
		overall = int(math.Round(*avg))
	}

	err = tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]interface{}{
			"overall_progress": overall,
			"updated_at":       time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("progress: store overall for %s: %w", projectID, err)
	}
	return nil
}
