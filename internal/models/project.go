package models

import "time"

// Project is a tracked startup project owned by a single user. Every project
// follows the same step catalog; OverallProgress is derived state, the
// rounded mean of the project's step progress percentages.
type Project struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          string `gorm:"size:128;index:idx_projects_user_updated,priority:1;not null"`
	Name            string `gorm:"size:255;not null"`
	Description     string `gorm:"type:text"`
	OverallProgress int    `gorm:"default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time `gorm:"index:idx_projects_user_updated,priority:2"`
}
