package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zatekoja/carecapacity/internal/application/services"
	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
)

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	facilities *services.FacilityService
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilities *services.FacilityService) *FacilityHandler {
	return &FacilityHandler{
		facilities: facilities,
	}
}

type facilityRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	TotalBeds int    `json:"total_beds"`
	ICUBeds   int    `json:"icu_beds"`
}

// CreateFacility handles POST /api/facilities
func (h *FacilityHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	facility := entities.NewFacility(req.Name, req.Location, req.TotalBeds, req.ICUBeds)
	if err := h.facilities.Create(r.Context(), facility); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, facility)
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	active := true
	filter := repositories.FacilityFilter{
		Location: r.URL.Query().Get("location"),
		IsActive: &active,
		Limit:    30,
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if parsed, err := strconv.Atoi(offset); err == nil && parsed > 0 {
			filter.Offset = parsed
		}
	}

	facilities, err := h.facilities.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// UpdateFacility handles PUT /api/facilities/{id}
func (h *FacilityHandler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	existing, err := h.facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := *existing
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Location != "" {
		updated.Location = req.Location
	}
	if req.TotalBeds != 0 {
		updated.TotalBeds = req.TotalBeds
	}
	if req.ICUBeds != 0 {
		updated.ICUBeds = req.ICUBeds
	}

	if err := h.facilities.Update(r.Context(), &updated); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, &updated)
}

// DeleteFacility handles DELETE /api/facilities/{id}
func (h *FacilityHandler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	if err := h.facilities.Delete(r.Context(), facilityID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
