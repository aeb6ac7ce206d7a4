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

type SessionEndpoints struct {
	repo repository.Store
	hub  *ws.Hub
}

func NewSessionEndpoints(repo repository.Store, hub *ws.Hub) *SessionEndpoints {
	return &SessionEndpoints{
		repo: repo,
		hub:  hub,
	}
}

type CreateSessionRequest struct {
	ID              string  `json:"id"`
	Title           string  `json:"title" validate:"required"`
	JobTitle        string  `json:"job_title"`
	CompanyName     string  `json:"company_name"`
	Mode            string  `json:"mode"`
	ScheduledAt     *string `json:"scheduled_at"`
	DurationMinutes *int    `json:"duration_minutes"`
}

// UpdateSessionRequest uses pointers throughout so an absent field can be
// told apart from an explicit zero value; absent fields are left untouched.
type UpdateSessionRequest struct {
	Title           *string `json:"title"`
	JobTitle        *string `json:"job_title"`
	CompanyName     *string `json:"company_name"`
	Mode            *string `json:"mode"`
	ScheduledAt     *string `json:"scheduled_at"`
	DurationMinutes *int    `json:"duration_minutes"`
}

type CreateSessionResponse struct {
	Session models.Session `json:"session"`
	Message string         `json:"message"`
}

type SessionResponse struct {
	Session models.Session `json:"session"`
}

type GetSessionsResponse struct {
	Sessions []models.Session `json:"sessions"`
	Count    int              `json:"count"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", e.CreateSessionHandler)
		r.Get("/", e.GetSessionsHandler)
		r.Get("/{id}", e.GetSessionHandler)
		r.Patch("/{id}", e.UpdateSessionHandler)
		r.Delete("/{id}", e.DeleteSessionHandler)
	})
}

func (e *SessionEndpoints) publish(userID string, event ws.Event) {
	if e.hub != nil {
		e.hub.Publish(userID, event)
	}
}

func (e *SessionEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		fields["duration_minutes"] = "duration_minutes must be positive"
	}

	var scheduledAt *time.Time
	if req.ScheduledAt != nil && *req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			fields["scheduled_at"] = "scheduled_at must be an RFC 3339 timestamp"
		} else {
			scheduledAt = &t
		}
	}

	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	session := models.Session{
		ID:              id,
		UserID:          user.ID,
		Title:           req.Title,
		JobTitle:        req.JobTitle,
		CompanyName:     req.CompanyName,
		Mode:            req.Mode,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.repo.CreateSession(r.Context(), &session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	e.publish(user.ID, ws.Event{Type: "session.created", SessionID: session.ID, Payload: session})

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Session: session,
		Message: "Session created successfully",
	})

	slog.Info("Practice session created", "session_id", session.ID, "user_id", user.ID)
}

func (e *SessionEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessions, err := e.repo.GetSessions(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get sessions")
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	writeJSON(w, http.StatusOK, GetSessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})

	slog.Info("Practice sessions retrieved", "user_id", user.ID, "count", len(sessions))
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.repo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{Session: *session})
}

func (e *SessionEndpoints) UpdateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := make(map[string]string)
	patch := make(map[string]interface{})

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			fields["title"] = "title must not be empty"
		} else {
			patch["title"] = *req.Title
		}
	}
	if req.JobTitle != nil {
		patch["job_title"] = *req.JobTitle
	}
	if req.CompanyName != nil {
		patch["company_name"] = *req.CompanyName
	}
	if req.Mode != nil {
		patch["mode"] = *req.Mode
	}
	if req.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			fields["scheduled_at"] = "scheduled_at must be an RFC 3339 timestamp"
		} else {
			patch["scheduled_at"] = t
		}
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			fields["duration_minutes"] = "duration_minutes must be positive"
		} else {
			patch["duration_minutes"] = *req.DurationMinutes
		}
	}

	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	session, err := e.repo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	// Nothing to change: return the row as-is without touching updated_at.
	if len(patch) == 0 {
		writeJSON(w, http.StatusOK, SessionResponse{Session: *session})
		return
	}

	if err := e.repo.UpdateSessionFields(r.Context(), session, patch); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update session")
		return
	}

	e.publish(user.ID, ws.Event{Type: "session.updated", SessionID: session.ID, Payload: *session})

	writeJSON(w, http.StatusOK, SessionResponse{Session: *session})

	slog.Info("Practice session updated", "session_id", session.ID, "user_id", user.ID)
}

func (e *SessionEndpoints) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.repo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	rows, err := e.repo.DeleteSession(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	if rows == 0 {
		// Lost a race with a concurrent delete.
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	e.publish(user.ID, ws.Event{Type: "session.deleted", SessionID: session.ID, Payload: *session})

	writeJSON(w, http.StatusOK, SessionResponse{Session: *session})

	slog.Info("Practice session deleted", "session_id", session.ID, "user_id", user.ID)
}
