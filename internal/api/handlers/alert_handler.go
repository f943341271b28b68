package handlers

import (
	"net/http"

	"github.com/zatekoja/carecapacity/internal/application/services"
)

// AlertHandler handles capacity alert HTTP requests
type AlertHandler struct {
	alerts *services.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{
		alerts: alerts,
	}
}

// GetAlerts handles GET /api/alerts/{facilityID}?days=N
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	report, err := h.alerts.AlertsForFacility(r.Context(), facilityID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}
