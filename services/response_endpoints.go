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

type ResponseEndpoints struct {
	repo repository.Store
	hub  *ws.Hub
}

func NewResponseEndpoints(repo repository.Store, hub *ws.Hub) *ResponseEndpoints {
	return &ResponseEndpoints{
		repo: repo,
		hub:  hub,
	}
}

type SaveResponseRequest struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"session_id" validate:"required"`
	QuestionID string  `json:"question_id" validate:"required"`
	Answer     string  `json:"answer" validate:"required"`
	Score      *int    `json:"score"`
	Feedback   *string `json:"feedback"`
}

type ResponseResponse struct {
	Response models.Response `json:"response"`
}

type GetResponsesResponse struct {
	Responses []models.Response `json:"responses"`
	Count     int               `json:"count"`
}

func (e *ResponseEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/responses", func(r chi.Router) {
		r.Post("/", e.SaveResponseHandler)
		r.Get("/", e.GetResponsesHandler)
	})
}

func (e *ResponseEndpoints) publish(userID string, event ws.Event) {
	if e.hub != nil {
		e.hub.Publish(userID, event)
	}
}

// SaveResponseHandler inserts when no id is provided and updates otherwise.
// The referenced question must belong to the session named in the request,
// and an existing response id cannot be replayed under a different session.
func (e *ResponseEndpoints) SaveResponseHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SaveResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if req.SessionID == "" {
		fields["session_id"] = "session_id is required"
	}
	if req.QuestionID == "" {
		fields["question_id"] = "question_id is required"
	}
	if strings.TrimSpace(req.Answer) == "" {
		fields["answer"] = "answer is required"
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

	question, err := e.repo.GetQuestionForSession(r.Context(), req.QuestionID, req.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get question")
		return
	}
	if question == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	if req.ID == "" {
		response := models.Response{
			ID:         uuid.New().String(),
			SessionID:  req.SessionID,
			QuestionID: req.QuestionID,
			Answer:     req.Answer,
			Score:      req.Score,
			CreatedAt:  time.Now(),
		}
		if req.Feedback != nil {
			response.Feedback = *req.Feedback
		}

		if err := e.repo.CreateResponse(r.Context(), &response); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save response")
			return
		}

		e.publish(user.ID, ws.Event{Type: "response.saved", SessionID: response.SessionID, Payload: response})

		writeJSON(w, http.StatusCreated, ResponseResponse{Response: response})

		slog.Info("Response created", "response_id", response.ID, "session_id", response.SessionID, "user_id", user.ID)
		return
	}

	existing, err := e.repo.GetResponseByID(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get response")
		return
	}
	if existing == nil || existing.SessionID != req.SessionID {
		writeError(w, http.StatusNotFound, "response not found")
		return
	}

	existing.QuestionID = req.QuestionID
	existing.Answer = req.Answer
	if req.Score != nil {
		existing.Score = req.Score
	}
	if req.Feedback != nil {
		existing.Feedback = *req.Feedback
	}

	if err := e.repo.UpdateResponse(r.Context(), existing); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save response")
		return
	}

	e.publish(user.ID, ws.Event{Type: "response.saved", SessionID: existing.SessionID, Payload: *existing})

	writeJSON(w, http.StatusOK, ResponseResponse{Response: *existing})

	slog.Info("Response updated", "response_id", existing.ID, "session_id", existing.SessionID, "user_id", user.ID)
}

// GetResponsesHandler lists the caller's responses, optionally narrowed to a
// session and question. Rows are fetched without a query-level filter and
// narrowed in memory against the caller's owned session set; at current data
// volumes the full scan is cheap and keeps ownership filtering in one place.
func (e *ResponseEndpoints) GetResponsesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionFilter := r.URL.Query().Get("session_id")
	questionFilter := r.URL.Query().Get("question_id")

	ownedIDs, err := e.repo.GetOwnedSessionIDs(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get sessions")
		return
	}

	owned := make(map[string]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	if sessionFilter != "" && !owned[sessionFilter] {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	all, err := e.repo.GetAllResponses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get responses")
		return
	}

	responses := []models.Response{}
	for _, response := range all {
		if !owned[response.SessionID] {
			continue
		}
		if sessionFilter != "" && response.SessionID != sessionFilter {
			continue
		}
		if questionFilter != "" && response.QuestionID != questionFilter {
			continue
		}
		responses = append(responses, response)
	}

	writeJSON(w, http.StatusOK, GetResponsesResponse{
		Responses: responses,
		Count:     len(responses),
	})

	slog.Info("Responses retrieved", "user_id", user.ID, "count", len(responses))
}
