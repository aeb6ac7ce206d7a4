package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prepdeck/backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *GORMRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	repo := NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return repo
}

func seedSession(t *testing.T, repo *GORMRepository, userID, title string) *models.Session {
	t.Helper()

	session := &models.Session{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  title,
	}
	if err := repo.CreateSession(t.Context(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}

func TestGetSessionScopesToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	ownerID := uuid.New().String()
	otherID := uuid.New().String()
	session := seedSession(t, repo, ownerID, "Mine")

	got, err := repo.GetSession(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != session.ID {
		t.Errorf("expected owner lookup to succeed, got %+v", got)
	}

	got, err = repo.GetSession(ctx, session.ID, otherID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for non-owner lookup, got %+v", got)
	}
}

func TestSessionOwnedBy(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	ownerID := uuid.New().String()
	session := seedSession(t, repo, ownerID, "Mine")

	owned, err := repo.SessionOwnedBy(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owned {
		t.Error("expected session to be owned by its creator")
	}

	owned, err = repo.SessionOwnedBy(ctx, session.ID, uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owned {
		t.Error("expected session not to be owned by a stranger")
	}

	owned, err = repo.SessionOwnedBy(ctx, uuid.New().String(), ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owned {
		t.Error("expected unknown session not to be owned")
	}
}

func TestDeleteSessionRowsAffected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	ownerID := uuid.New().String()
	session := seedSession(t, repo, ownerID, "Mine")

	rows, err := repo.DeleteSession(ctx, session.ID, uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows for non-owner delete, got %d", rows)
	}

	rows, err = repo.DeleteSession(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row deleted, got %d", rows)
	}

	rows, err = repo.DeleteSession(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows for repeated delete, got %d", rows)
	}

	// Soft-deleted rows must vanish from the owned set.
	ids, err := repo.GetOwnedSessionIDs(ctx, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no owned sessions after delete, got %v", ids)
	}
}

func TestUpdateSessionFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	ownerID := uuid.New().String()
	session := seedSession(t, repo, ownerID, "Before")

	err := repo.UpdateSessionFields(ctx, session, map[string]interface{}{
		"title":        "After",
		"company_name": "Example Corp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetSession(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "After" {
		t.Errorf("expected title After, got %q", got.Title)
	}
	if got.CompanyName != "Example Corp" {
		t.Errorf("expected company_name set, got %q", got.CompanyName)
	}
	if got.UserID != ownerID {
		t.Errorf("expected user_id untouched, got %q", got.UserID)
	}
}

func TestGetQuestionForSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	session := seedSession(t, repo, uuid.New().String(), "Mine")
	other := seedSession(t, repo, uuid.New().String(), "Other")

	question := &models.Question{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		OrderIndex: 1,
		Question:   "Tell me about yourself",
	}
	if err := repo.CreateQuestion(ctx, question); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}

	got, err := repo.GetQuestionForSession(ctx, question.ID, session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != question.ID {
		t.Errorf("expected lookup to succeed, got %+v", got)
	}

	got, err = repo.GetQuestionForSession(ctx, question.ID, other.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for mismatched session, got %+v", got)
	}
}

func TestLookupsReturnNilNilWhenMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	if user, err := repo.GetUserByID(ctx, uuid.New().String()); err != nil || user != nil {
		t.Errorf("GetUserByID: expected (nil, nil), got (%v, %v)", user, err)
	}
	if user, err := repo.GetUserByEmail(ctx, "missing@example.com"); err != nil || user != nil {
		t.Errorf("GetUserByEmail: expected (nil, nil), got (%v, %v)", user, err)
	}
	if question, err := repo.GetQuestionByID(ctx, uuid.New().String()); err != nil || question != nil {
		t.Errorf("GetQuestionByID: expected (nil, nil), got (%v, %v)", question, err)
	}
	if response, err := repo.GetResponseByID(ctx, uuid.New().String()); err != nil || response != nil {
		t.Errorf("GetResponseByID: expected (nil, nil), got (%v, %v)", response, err)
	}
	if session, err := repo.GetSession(ctx, uuid.New().String(), uuid.New().String()); err != nil || session != nil {
		t.Errorf("GetSession: expected (nil, nil), got (%v, %v)", session, err)
	}
}

func TestGetPracticeStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := t.Context()

	ownerID := uuid.New().String()
	session := seedSession(t, repo, ownerID, "Mine")
	seedSession(t, repo, uuid.New().String(), "Someone else's")

	question := &models.Question{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		OrderIndex: 1,
		Question:   "Q",
	}
	if err := repo.CreateQuestion(ctx, question); err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	response := &models.Response{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		QuestionID: question.ID,
		Answer:     "A",
	}
	if err := repo.CreateResponse(ctx, response); err != nil {
		t.Fatalf("failed to create response: %v", err)
	}

	stats, err := repo.GetPracticeStats(ctx, ownerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSessions != 1 || stats.TotalQuestions != 1 || stats.TotalResponses != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	stats, err = repo.GetPracticeStats(ctx, uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSessions != 0 || stats.TotalQuestions != 0 || stats.TotalResponses != 0 {
		t.Errorf("expected zero stats for unknown user, got %+v", stats)
	}
}
