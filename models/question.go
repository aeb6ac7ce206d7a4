package models

import (
	"time"

	"gorm.io/gorm"
)

// Question is one prompt belonging to a session, ordered by order_index.
type Question struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   string         `gorm:"type:uuid;not null;index" json:"session_id"`
	OrderIndex  int            `gorm:"not null" json:"order_index"`
	Question    string         `gorm:"type:text;not null" json:"question"`
	IdealAnswer string         `gorm:"type:text" json:"ideal_answer,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session   *Session   `gorm:"foreignKey:SessionID" json:"-"`
	Responses []Response `gorm:"foreignKey:QuestionID" json:"responses,omitempty"`
}
