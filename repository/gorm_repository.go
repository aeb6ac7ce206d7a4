package repository

import (
	"context"
	"log/slog"

	"github.com/prepdeck/backend/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Question{},
		&models.Response{},
	)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

// Session operations
func (r *GORMRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create session", "error", err, "user_id", session.UserID)
		return err
	}
	slog.Info("Session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

func (r *GORMRepository) GetSession(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get session", "error", err, "session_id", sessionID, "user_id", userID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) GetSessions(ctx context.Context, userID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		slog.Error("Failed to get sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// UpdateSessionFields applies a sparse patch to an already-loaded session.
// Callers decide which columns to touch; gorm refreshes updated_at on write
// and assigns the patched values back onto the struct.
func (r *GORMRepository) UpdateSessionFields(ctx context.Context, session *models.Session, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(session).Updates(fields).Error; err != nil {
		slog.Error("Failed to update session", "error", err, "session_id", session.ID)
		return err
	}
	slog.Info("Session updated", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

func (r *GORMRepository) DeleteSession(ctx context.Context, sessionID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).Delete(&models.Session{})
	if result.Error != nil {
		slog.Error("Failed to delete session", "error", result.Error, "session_id", sessionID, "user_id", userID)
		return 0, result.Error
	}
	slog.Info("Session deleted", "session_id", sessionID, "user_id", userID, "rows", result.RowsAffected)
	return result.RowsAffected, nil
}

// SessionOwnedBy reports whether the session exists and belongs to the user.
// Every sessionId-scoped action goes through this predicate before touching
// child rows.
func (r *GORMRepository) SessionOwnedBy(ctx context.Context, sessionID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	if err != nil {
		slog.Error("Failed to check session ownership", "error", err, "session_id", sessionID, "user_id", userID)
		return false, err
	}
	return count > 0, nil
}

func (r *GORMRepository) GetOwnedSessionIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		slog.Error("Failed to get owned session IDs", "error", err, "user_id", userID)
		return nil, err
	}
	return ids, nil
}

// Question operations
func (r *GORMRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		slog.Error("Failed to create question", "error", err, "session_id", question.SessionID)
		return err
	}
	slog.Info("Question created", "question_id", question.ID, "session_id", question.SessionID)
	return nil
}

func (r *GORMRepository) GetQuestionByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get question by ID", "error", err, "question_id", id)
		return nil, err
	}
	return &question, nil
}

func (r *GORMRepository) GetQuestionForSession(ctx context.Context, questionID, sessionID string) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).Where("id = ? AND session_id = ?", questionID, sessionID).First(&question).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get question for session", "error", err, "question_id", questionID, "session_id", sessionID)
		return nil, err
	}
	return &question, nil
}

func (r *GORMRepository) GetQuestions(ctx context.Context, sessionID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("order_index").Find(&questions).Error
	if err != nil {
		slog.Error("Failed to get questions", "error", err, "session_id", sessionID)
		return nil, err
	}
	return questions, nil
}

func (r *GORMRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	if err := r.db.WithContext(ctx).Save(question).Error; err != nil {
		slog.Error("Failed to update question", "error", err, "question_id", question.ID)
		return err
	}
	slog.Info("Question updated", "question_id", question.ID, "session_id", question.SessionID)
	return nil
}

func (r *GORMRepository) DeleteQuestion(ctx context.Context, questionID, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND session_id = ?", questionID, sessionID).Delete(&models.Question{})
	if result.Error != nil {
		slog.Error("Failed to delete question", "error", result.Error, "question_id", questionID, "session_id", sessionID)
		return 0, result.Error
	}
	slog.Info("Question deleted", "question_id", questionID, "session_id", sessionID, "rows", result.RowsAffected)
	return result.RowsAffected, nil
}

// Response operations
func (r *GORMRepository) CreateResponse(ctx context.Context, response *models.Response) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		slog.Error("Failed to create response", "error", err, "session_id", response.SessionID)
		return err
	}
	slog.Info("Response created", "response_id", response.ID, "session_id", response.SessionID, "question_id", response.QuestionID)
	return nil
}

func (r *GORMRepository) GetResponseByID(ctx context.Context, id string) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&response).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get response by ID", "error", err, "response_id", id)
		return nil, err
	}
	return &response, nil
}

// GetAllResponses fetches every response row; the listing endpoint filters
// down to the caller's owned sessions in memory.
func (r *GORMRepository) GetAllResponses(ctx context.Context) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).Find(&responses).Error; err != nil {
		slog.Error("Failed to get responses", "error", err)
		return nil, err
	}
	return responses, nil
}

func (r *GORMRepository) UpdateResponse(ctx context.Context, response *models.Response) error {
	if err := r.db.WithContext(ctx).Save(response).Error; err != nil {
		slog.Error("Failed to update response", "error", err, "response_id", response.ID)
		return err
	}
	slog.Info("Response updated", "response_id", response.ID, "session_id", response.SessionID)
	return nil
}

// GetPracticeStats aggregates session, question, and response counts across
// the user's owned sessions.
func (r *GORMRepository) GetPracticeStats(ctx context.Context, userID string) (*models.PracticeStats, error) {
	sessionIDs, err := r.GetOwnedSessionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.PracticeStats{TotalSessions: int64(len(sessionIDs))}
	if len(sessionIDs) == 0 {
		return stats, nil
	}

	err = r.db.WithContext(ctx).Model(&models.Question{}).
		Where("session_id IN ?", sessionIDs).
		Count(&stats.TotalQuestions).Error
	if err != nil {
		slog.Error("Failed to count questions", "error", err, "user_id", userID)
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Response{}).
		Where("session_id IN ?", sessionIDs).
		Count(&stats.TotalResponses).Error
	if err != nil {
		slog.Error("Failed to count responses", "error", err, "user_id", userID)
		return nil, err
	}

	return stats, nil
}
