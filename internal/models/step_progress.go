package models

import (
	"time"

	"gorm.io/datatypes"
)

// Step progress statuses.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSkipped    = "skipped"
)

// StepProgress tracks one user's advancement through one catalog step of one
// project. Identity is the (ProjectID, StepNumber) pair; the unique index is
// what serializes concurrent upserts against the same step.
type StepProgress struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID       string `gorm:"size:36;uniqueIndex:idx_step_progress_project_step,priority:1;not null"`
	StepNumber      int    `gorm:"uniqueIndex:idx_step_progress_project_step,priority:2;not null"`
	Status          string `gorm:"size:16;default:not_started"`
	ProgressPercent int    `gorm:"default:0"`
	Notes           string `gorm:"type:text"`
	CompletedAt     *time.Time
	Reminders       datatypes.JSON `gorm:"type:json"`
}

// ReminderSummary is the denormalized reminder shape embedded in
// StepProgress.Reminders so the project-detail view needs no extra query.
type ReminderSummary struct {
	ID       string    `json:"id"`
	RemindAt time.Time `json:"remind_at"`
	Message  string    `json:"message"`
	Sent     bool      `json:"sent"`
}
