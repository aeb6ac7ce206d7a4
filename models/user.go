package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity provider's user record. Credentials live with
// the external auth service; this service only reads users to resolve the
// caller behind a verified token.
type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName  string         `gorm:"size:255" json:"full_name,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sessions []Session `gorm:"foreignKey:UserID" json:"sessions,omitempty"`
}

// PracticeStats represents aggregated practice activity for a user
type PracticeStats struct {
	TotalSessions  int64 `json:"total_sessions"`
	TotalQuestions int64 `json:"total_questions"`
	TotalResponses int64 `json:"total_responses"`
}
