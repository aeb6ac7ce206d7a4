package models

import (
	"time"

	"gorm.io/gorm"
)

// Session records one interview-practice attempt, owned by exactly one user.
// IDs are minted in the action layer so upsert and ownership checks can work
// with them before the row exists.
type Session struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title           string         `gorm:"not null" json:"title"`
	JobTitle        string         `gorm:"size:255" json:"job_title,omitempty"`
	CompanyName     string         `gorm:"size:255" json:"company_name,omitempty"`
	Mode            string         `gorm:"size:50" json:"mode,omitempty"`
	ScheduledAt     *time.Time     `json:"scheduled_at,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Questions []Question `gorm:"foreignKey:SessionID" json:"questions,omitempty"`
	Responses []Response `gorm:"foreignKey:SessionID" json:"responses,omitempty"`
}
