package routes

import (
	"net/http"

	"github.com/zatekoja/carecapacity/internal/api/handlers"
	"github.com/zatekoja/carecapacity/internal/api/middleware"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler   *handlers.FacilityHandler
	recordHandler     *handlers.RecordHandler
	forecastHandler   *handlers.ForecastHandler
	alertHandler      *handlers.AlertHandler
	comparisonHandler *handlers.ComparisonHandler
	dashboardHandler  *handlers.DashboardHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	recordHandler *handlers.RecordHandler,
	forecastHandler *handlers.ForecastHandler,
	alertHandler *handlers.AlertHandler,
	comparisonHandler *handlers.ComparisonHandler,
	dashboardHandler *handlers.DashboardHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		facilityHandler:   facilityHandler,
		recordHandler:     recordHandler,
		forecastHandler:   forecastHandler,
		alertHandler:      alertHandler,
		comparisonHandler: comparisonHandler,
		dashboardHandler:  dashboardHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Facility endpoints
	r.mux.HandleFunc("POST /api/facilities", r.facilityHandler.CreateFacility)
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("PUT /api/facilities/{id}", r.facilityHandler.UpdateFacility)
	r.mux.HandleFunc("DELETE /api/facilities/{id}", r.facilityHandler.DeleteFacility)

	// Daily record endpoints
	r.mux.HandleFunc("POST /api/records", r.recordHandler.CreateRecord)
	r.mux.HandleFunc("GET /api/records/{facilityID}", r.recordHandler.ListRecords)
	r.mux.HandleFunc("GET /api/records/{facilityID}/latest", r.recordHandler.LatestRecord)

	// Forecast endpoints
	r.mux.HandleFunc("GET /api/predict/{facilityID}", r.forecastHandler.Predict)
	r.mux.HandleFunc("GET /api/forecast/{facilityID}", r.forecastHandler.Forecast)
	r.mux.HandleFunc("GET /api/availability/{facilityID}", r.forecastHandler.Availability)

	// Alert endpoints
	r.mux.HandleFunc("GET /api/alerts/{facilityID}", r.alertHandler.GetAlerts)

	// Comparison and recommendation endpoints
	r.mux.HandleFunc("GET /api/compare", r.comparisonHandler.Compare)
	r.mux.HandleFunc("GET /api/recommendation/{location}", r.comparisonHandler.Recommend)

	// Dashboard endpoint
	r.mux.HandleFunc("GET /api/dashboard/{facilityID}", r.dashboardHandler.GetDashboard)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
