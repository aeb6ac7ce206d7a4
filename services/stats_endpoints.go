package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepdeck/backend/models"
	"github.com/prepdeck/backend/repository"
)

type StatsEndpoints struct {
	repo repository.Store
}

func NewStatsEndpoints(repo repository.Store) *StatsEndpoints {
	return &StatsEndpoints{repo: repo}
}

type GetStatsResponse struct {
	Stats models.PracticeStats `json:"stats"`
}

func (e *StatsEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/stats", e.GetStatsHandler)
}

func (e *StatsEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := e.repo.GetPracticeStats(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, GetStatsResponse{Stats: *stats})
}
