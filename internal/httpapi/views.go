package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibetracker/vibetracker/internal/models"
	"github.com/vibetracker/vibetracker/internal/project"
)

// projectView is the wire shape for a project.
type projectView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	OverallProgress int       `json:"overall_progress"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toProjectView(p models.Project) projectView {
	return projectView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		OverallProgress: p.OverallProgress,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProjectViews(projects []models.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	return views
}

// progressView is the normalized wire shape for a step-progress row.
// Absent fields default to not_started / 0 / "" / [].
type progressView struct {
	StepNumber      int                      `json:"step_number"`
	Status          string                   `json:"status"`
	ProgressPercent int                      `json:"progress_percent"`
	Notes           string                   `json:"notes"`
	CompletedAt     *time.Time               `json:"completed_at"`
	Reminders       []models.ReminderSummary `json:"reminders"`
}

func toProgressView(row models.StepProgress) progressView {
	v := progressView{
		StepNumber:      row.StepNumber,
		Status:          row.Status,
		ProgressPercent: row.ProgressPercent,
		Notes:           row.Notes,
		CompletedAt:     row.CompletedAt,
		Reminders:       []models.ReminderSummary{},
	}
	if v.Status == "" {
		v.Status = models.StatusNotStarted
	}
	if len(row.Reminders) > 0 {
		var summaries []models.ReminderSummary
		if err := json.Unmarshal(row.Reminders, &summaries); err == nil && summaries != nil {
			v.Reminders = summaries
		}
	}
	return v
}

func toProgressViews(rows []models.StepProgress) []progressView {
	views := make([]progressView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toProgressView(row))
	}
	return views
}

// reminderView is the wire shape for a reminder.
type reminderView struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	StepNumber int       `json:"step_number"`
	RemindAt   time.Time `json:"remind_at"`
	Message    string    `json:"message"`
	Sent       bool      `json:"sent"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReminderView(r models.Reminder) reminderView {
	return reminderView{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		StepNumber: r.StepNumber,
		RemindAt:   r.RemindAt,
		Message:    r.Message,
		Sent:       r.Sent,
		CreatedAt:  r.CreatedAt,
	}
}

func toReminderViews(reminders []models.Reminder) []reminderView {
	views := make([]reminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, toReminderView(r))
	}
	return views
}

// renderError translates domain errors into HTTP responses: malformed ids
// are 400, absent or foreign records are 404, everything else is a logged
// 500.
func renderError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, project.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
	case errors.Is(err, project.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, project.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
