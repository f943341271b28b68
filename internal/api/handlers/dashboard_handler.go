package handlers

import (
	"net/http"

	"github.com/zatekoja/carecapacity/internal/application/services"
)

// DashboardHandler handles the admin dashboard endpoint
type DashboardHandler struct {
	dashboards *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboards: dashboards,
	}
}

// GetDashboard handles GET /api/dashboard/{facilityID}
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	dashboard, err := h.dashboards.Dashboard(r.Context(), facilityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}
