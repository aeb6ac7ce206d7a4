package repository

import (
	"context"

	"github.com/prepdeck/backend/models"
)

// Store is the data-access surface consumed by the endpoint layer. Lookups
// return (nil, nil) when no row matches; deletes report the number of rows
// removed so callers can distinguish a lost race from success.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Sessions
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, sessionID, userID string) (*models.Session, error)
	GetSessions(ctx context.Context, userID string) ([]models.Session, error)
	UpdateSessionFields(ctx context.Context, session *models.Session, fields map[string]interface{}) error
	DeleteSession(ctx context.Context, sessionID, userID string) (int64, error)
	SessionOwnedBy(ctx context.Context, sessionID, userID string) (bool, error)
	GetOwnedSessionIDs(ctx context.Context, userID string) ([]string, error)

	// Questions
	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestionByID(ctx context.Context, id string) (*models.Question, error)
	GetQuestionForSession(ctx context.Context, questionID, sessionID string) (*models.Question, error)
	GetQuestions(ctx context.Context, sessionID string) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, questionID, sessionID string) (int64, error)

	// Responses
	CreateResponse(ctx context.Context, response *models.Response) error
	GetResponseByID(ctx context.Context, id string) (*models.Response, error)
	GetAllResponses(ctx context.Context) ([]models.Response, error)
	UpdateResponse(ctx context.Context, response *models.Response) error

	// Aggregates
	GetPracticeStats(ctx context.Context, userID string) (*models.PracticeStats, error)
}
