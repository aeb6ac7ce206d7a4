package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepdeck/backend/models"
	"github.com/prepdeck/backend/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	t      *testing.T
	repo   *repository.GORMRepository
	router *chi.Mux
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
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
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	repo := repository.NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	config := &Config{JWT: JWTConfig{Secret: "test-secret"}}
	server := NewServer(config)
	server.SetDatabase(repo, db)
	if err := server.InitializeServices(); err != nil {
		t.Fatalf("failed to initialize services: %v", err)
	}

	return &testEnv{
		t:      t,
		repo:   repo,
		router: server.SetupRoutes(),
		auth:   server.authService,
	}
}

func (env *testEnv) createUser(email string) (*models.User, string) {
	env.t.Helper()

	user := &models.User{
		ID:    uuid.New().String(),
		Email: email,
	}
	if err := env.repo.CreateUser(env.t.Context(), user); err != nil {
		env.t.Fatalf("failed to create user: %v", err)
	}

	token, err := env.auth.IssueToken(user)
	if err != nil {
		env.t.Fatalf("failed to issue token: %v", err)
	}
	return user, token
}

func (env *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	env.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			env.t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func (env *testEnv) createSession(token, title string) models.Session {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/sessions", token, map[string]interface{}{"title": title})
	if rec.Code != http.StatusCreated {
		env.t.Fatalf("failed to create session: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp CreateSessionResponse
	decodeBody(env.t, rec, &resp)
	return resp.Session
}

func (env *testEnv) createQuestion(token, sessionID string, orderIndex int, question string) models.Question {
	env.t.Helper()

	rec := env.request(http.MethodPost, "/api/v1/questions", token, map[string]interface{}{
		"session_id":  sessionID,
		"order_index": orderIndex,
		"question":    question,
	})
	if rec.Code != http.StatusCreated {
		env.t.Fatalf("failed to create question: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp QuestionResponse
	decodeBody(env.t, rec, &resp)
	return resp.Question
}
