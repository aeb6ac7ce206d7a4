package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prepdeck/backend/models"
	"github.com/prepdeck/backend/repository"
	ws "github.com/prepdeck/backend/websocket"
)

type QuestionEndpoints struct {
	repo repository.Store
	hub  *ws.Hub
}

func NewQuestionEndpoints(repo repository.Store, hub *ws.Hub) *QuestionEndpoints {
	return &QuestionEndpoints{
		repo: repo,
		hub:  hub,
	}
}

type SaveQuestionRequest struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id" validate:"required"`
	OrderIndex  int     `json:"order_index" validate:"required"`
	Question    string  `json:"question" validate:"required"`
	IdealAnswer *string `json:"ideal_answer"`
}

type QuestionResponse struct {
	Question models.Question `json:"question"`
}

type GetQuestionsResponse struct {
	Questions []models.Question `json:"questions"`
	Count     int               `json:"count"`
}

func (e *QuestionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/questions", func(r chi.Router) {
		r.Post("/", e.SaveQuestionHandler)
		r.Get("/", e.GetQuestionsHandler)
		r.Delete("/{id}", e.DeleteQuestionHandler)
	})
}

func (e *QuestionEndpoints) publish(userID string, event ws.Event) {
	if e.hub != nil {
		e.hub.Publish(userID, event)
	}
}

// SaveQuestionHandler inserts when no id is provided and updates otherwise.
// The update path guards against a question id being replayed under a
// different session.
func (e *QuestionEndpoints) SaveQuestionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SaveQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.SessionID == "" {
		fields["session_id"] = "session_id is required"
	}
	if strings.TrimSpace(req.Question) == "" {
		fields["question"] = "question is required"
	}
	if req.OrderIndex <= 0 {
		fields["order_index"] = "order_index must be positive"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	owned, err := e.repo.SessionOwnedBy(r.Context(), req.SessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check session")
		return
	}
	if !owned {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	if req.ID == "" {
		question := models.Question{
			ID:         uuid.New().String(),
			SessionID:  req.SessionID,
			OrderIndex: req.OrderIndex,
			Question:   req.Question,
			CreatedAt:  time.Now(),
		}
		if req.IdealAnswer != nil {
			question.IdealAnswer = *req.IdealAnswer
		}

		if err := e.repo.CreateQuestion(r.Context(), &question); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save question")
			return
		}

		e.publish(user.ID, ws.Event{Type: "question.saved", SessionID: question.SessionID, Payload: question})

		writeJSON(w, http.StatusCreated, QuestionResponse{Question: question})

		slog.Info("Question created", "question_id", question.ID, "session_id", question.SessionID, "user_id", user.ID)
		return
	}

	existing, err := e.repo.GetQuestionByID(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get question")
		return
	}
	if existing == nil || existing.SessionID != req.SessionID {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	existing.Question = req.Question
	existing.OrderIndex = req.OrderIndex
	if req.IdealAnswer != nil {
		existing.IdealAnswer = *req.IdealAnswer
	}
	// created_at is re-stamped on every edit; existing clients read it as a
	// last-touched marker, so the behavior is kept as-is.
	existing.CreatedAt = time.Now()

	if err := e.repo.UpdateQuestion(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save question")
		return
	}

	e.publish(user.ID, ws.Event{Type: "question.saved", SessionID: existing.SessionID, Payload: *existing})

	writeJSON(w, http.StatusOK, QuestionResponse{Question: *existing})

	slog.Info("Question updated", "question_id", existing.ID, "session_id", existing.SessionID, "user_id", user.ID)
}

func (e *QuestionEndpoints) GetQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeValidationError(w, map[string]string{"session_id": "session_id is required"})
		return
	}

	owned, err := e.repo.SessionOwnedBy(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check session")
		return
	}
	if !owned {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	questions, err := e.repo.GetQuestions(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get questions")
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeJSON(w, http.StatusOK, GetQuestionsResponse{
		Questions: questions,
		Count:     len(questions),
	})

	slog.Info("Questions retrieved", "session_id", sessionID, "user_id", user.ID, "count", len(questions))
}

func (e *QuestionEndpoints) DeleteQuestionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	questionID := chi.URLParam(r, "id")
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeValidationError(w, map[string]string{"session_id": "session_id is required"})
		return
	}

	owned, err := e.repo.SessionOwnedBy(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check session")
		return
	}
	if !owned {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	question, err := e.repo.GetQuestionForSession(r.Context(), questionID, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get question")
		return
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	rows, err := e.repo.DeleteQuestion(r.Context(), questionID, sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete question")
		return
	}
	if rows == 0 {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	e.publish(user.ID, ws.Event{Type: "question.deleted", SessionID: sessionID, Payload: *question})

	writeJSON(w, http.StatusOK, QuestionResponse{Question: *question})

	slog.Info("Question deleted", "question_id", questionID, "session_id", sessionID, "user_id", user.ID)
}
