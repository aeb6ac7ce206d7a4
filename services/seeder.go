package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prepdeck/backend/models"
	"github.com/prepdeck/backend/repository"
)

// DatabaseSeeder loads demo data for local development
type DatabaseSeeder struct {
	repo repository.Store
	auth *AuthService
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo repository.Store, auth *AuthService) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo, auth: auth}
}

const seedUserEmail = "demo@example.com"

// SeedDatabase seeds the database with demo data (idempotent). The demo
// user row doubles as the completion marker.
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	existing, err := s.repo.GetUserByEmail(ctx, seedUserEmail)
	if err != nil {
		return fmt.Errorf("failed to check for seed user: %w", err)
	}
	if existing != nil {
		slog.Info("Database seeding already completed, skipping")
		s.logDevToken(existing)
		return nil
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    seedUserEmail,
		FullName: "Demo User",
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	now := time.Now()
	duration := 45
	session := &models.Session{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		Title:           "Backend Interview",
		JobTitle:        "Backend Engineer",
		CompanyName:     "Example Corp",
		Mode:            "practice",
		DurationMinutes: &duration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to seed session: %w", err)
	}

	questions := []models.Question{
		{
			SessionID:   session.ID,
			OrderIndex:  1,
			Question:    "Tell me about yourself",
			IdealAnswer: "A concise walkthrough of relevant experience and motivation.",
		},
		{
			SessionID:  session.ID,
			OrderIndex: 2,
			Question:   "Describe a production incident you debugged end to end",
		},
		{
			SessionID:  session.ID,
			OrderIndex: 3,
			Question:   "How would you design a rate limiter for a public API?",
		},
	}
	for i := range questions {
		questions[i].ID = uuid.New().String()
		questions[i].CreatedAt = now
		if err := s.repo.CreateQuestion(ctx, &questions[i]); err != nil {
			return fmt.Errorf("failed to seed question: %w", err)
		}
	}

	score := 70
	response := &models.Response{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		QuestionID: questions[0].ID,
		Answer:     "I have five years of backend experience, mostly in Go services.",
		Score:      &score,
		Feedback:   "Good structure, tie achievements to the role next time.",
		CreatedAt:  now,
	}
	if err := s.repo.CreateResponse(ctx, response); err != nil {
		return fmt.Errorf("failed to seed response: %w", err)
	}

	slog.Info("Database seeding completed successfully", "user_id", user.ID, "session_id", session.ID)
	s.logDevToken(user)
	return nil
}

// logDevToken prints a ready-to-use bearer token for the demo user so local
// clients can call the API without a separate identity provider.
func (s *DatabaseSeeder) logDevToken(user *models.User) {
	if s.auth == nil {
		return
	}
	token, err := s.auth.IssueToken(user)
	if err != nil {
		slog.Error("Failed to issue dev token", "error", err)
		return
	}
	slog.Info("Dev bearer token for demo user", "email", user.Email, "token", token)
}
