package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/zatekoja/carecapacity/internal/application/services"
	"github.com/zatekoja/carecapacity/internal/forecasting"
)

// ForecastHandler handles forecast and availability HTTP requests
type ForecastHandler struct {
	forecasts *services.ForecastService
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(forecasts *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecasts: forecasts,
	}
}

// Predict handles GET /api/predict/{facilityID}?days=N, returning the raw
// forecast series with model info
func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.forecasts.Predict(r.Context(), facilityID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Forecast handles GET /api/forecast/{facilityID}?days=N, returning per-day
// forecasts with risk levels and the best day to visit
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	result, err := h.forecasts.Forecast(r.Context(), facilityID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Availability handles GET /api/availability/{facilityID}. A facility with
// no records yet gets a zeroed snapshot, not a 404.
func (h *ForecastHandler) Availability(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	availability, err := h.forecasts.Availability(r.Context(), facilityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, availability)
}

// parseDays reads the days query parameter. An absent parameter means "use
// the default horizon"; an explicit 0 is an invalid horizon, not a request
// for the default. Other out-of-range values are left for the engine to
// reject so the client sees the engine's bounds in the error detail.
func parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, true
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "days must be an integer")
		return 0, false
	}
	if days == 0 {
		respondWithServiceError(w, fmt.Errorf("%w: got %d", forecasting.ErrInvalidHorizon, days))
		return 0, false
	}
	return days, true
}
