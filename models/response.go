package models

import (
	"time"

	"gorm.io/gorm"
)

// Response is a candidate's answer to one question within one session. The
// question referenced by QuestionID must belong to the session referenced by
// SessionID; the action layer enforces the pairing on every write.
type Response struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  string         `gorm:"type:uuid;not null;index" json:"session_id"`
	QuestionID string         `gorm:"type:uuid;not null;index" json:"question_id"`
	Answer     string         `gorm:"type:text;not null" json:"answer"`
	Score      *int           `json:"score,omitempty"`
	Feedback   string         `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session  *Session  `gorm:"foreignKey:SessionID" json:"-"`
	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
}
