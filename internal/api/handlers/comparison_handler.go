package handlers

import (
	"net/http"

	"github.com/zatekoja/carecapacity/internal/application/services"
)

// ComparisonHandler handles facility comparison and recommendation requests
type ComparisonHandler struct {
	comparisons *services.ComparisonService
}

// NewComparisonHandler creates a new comparison handler
func NewComparisonHandler(comparisons *services.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{
		comparisons: comparisons,
	}
}

// Compare handles GET /api/compare?location=...&days=N
func (h *ComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "location query parameter is required")
		return
	}

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	report, err := h.comparisons.Compare(r.Context(), location, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// Recommend handles GET /api/recommendation/{location}
func (h *ComparisonHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		respondWithError(w, http.StatusBadRequest, "location is required")
		return
	}

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	recommendation, err := h.comparisons.Recommend(r.Context(), location, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, recommendation)
}
