package models

import "time"

// Reminder is a scheduled nudge tied to a project step. Immutable after
// creation except for the Sent flag, which the dispatcher flips once the
// reminder has been delivered.
type Reminder struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:128;index:idx_reminders_user_sent_due,priority:1;not null"`
	ProjectID  string    `gorm:"size:36;index:idx_reminders_project_step,priority:1;not null"`
	StepNumber int       `gorm:"index:idx_reminders_project_step,priority:2;not null"`
	RemindAt   time.Time `gorm:"index:idx_reminders_user_sent_due,priority:3;index:idx_reminders_sent_due,priority:2"`
	Message    string    `gorm:"type:text"`
	Sent       bool      `gorm:"default:false;index:idx_reminders_user_sent_due,priority:2;index:idx_reminders_sent_due,priority:1"`
	CreatedAt  time.Time
}
