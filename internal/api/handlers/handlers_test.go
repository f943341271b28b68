package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/carecapacity/internal/api/handlers"
	"github.com/zatekoja/carecapacity/internal/api/routes"
	"github.com/zatekoja/carecapacity/internal/application/services"
	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/pkg/config"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

type memFacilityRepo struct {
	mu         sync.RWMutex
	facilities map[string]*entities.Facility
}

func newMemFacilityRepo(facilities ...*entities.Facility) *memFacilityRepo {
	repo := &memFacilityRepo{facilities: make(map[string]*entities.Facility)}
	for _, f := range facilities {
		repo.facilities[f.ID] = f
	}
	return repo
}

func (r *memFacilityRepo) Create(ctx context.Context, facility *entities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facilities[facility.ID] = facility
	return nil
}

func (r *memFacilityRepo) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	facility, ok := r.facilities[id]
	if !ok || !facility.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	return facility, nil
}

func (r *memFacilityRepo) Update(ctx context.Context, facility *entities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.facilities[facility.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", facility.ID))
	}
	r.facilities[facility.ID] = facility
	return nil
}

func (r *memFacilityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	facility, ok := r.facilities[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	facility.IsActive = false
	return nil
}

func (r *memFacilityRepo) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := []*entities.Facility{}
	for _, facility := range r.facilities {
		if filter.Location != "" && !strings.Contains(strings.ToLower(facility.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.ExcludeID != "" && facility.ID == filter.ExcludeID {
			continue
		}
		if filter.IsActive != nil && facility.IsActive != *filter.IsActive {
			continue
		}
		results = append(results, facility)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

type memRecordRepo struct {
	mu      sync.RWMutex
	records map[string][]*entities.DailyRecord
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: make(map[string][]*entities.DailyRecord)}
}

func (r *memRecordRepo) Upsert(ctx context.Context, record *entities.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.records[record.FacilityID]
	for i, stored := range existing {
		if stored.Date.Equal(record.Date) {
			existing[i] = record
			return nil
		}
	}
	r.records[record.FacilityID] = append(existing, record)
	return nil
}

func (r *memRecordRepo) ListByFacility(ctx context.Context, facilityID string, from, to time.Time) ([]*entities.DailyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := []*entities.DailyRecord{}
	for _, record := range r.records[facilityID] {
		if !from.IsZero() && record.Date.Before(from) {
			continue
		}
		if !to.IsZero() && record.Date.After(to) {
			continue
		}
		results = append(results, record)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date.Before(results[j].Date) })
	return results, nil
}

func (r *memRecordRepo) Latest(ctx context.Context, facilityID string) (*entities.DailyRecord, error) {
	records, _ := r.ListByFacility(ctx, facilityID, time.Time{}, time.Time{})
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no records found for facility %s", facilityID))
	}
	return records[len(records)-1], nil
}

func (r *memRecordRepo) CountByFacility(ctx context.Context, facilityID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records[facilityID]), nil
}

func seedRecords(repo *memRecordRepo, facilityID string, n, occupied int) {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		record := entities.NewDailyRecord(facilityID, end.AddDate(0, 0, -(n - 1 - i)))
		record.OccupiedBeds = occupied
		record.Admissions = 5
		record.Discharges = 4
		_ = repo.Upsert(context.Background(), record)
	}
}

// newTestServer wires the full router over in-memory repositories
func newTestServer(facilityRepo *memFacilityRepo, recordRepo *memRecordRepo) http.Handler {
	cfg := config.ForecastConfig{
		DefaultHorizonDays: 7,
		CacheTTLSeconds:    300,
		MediumThreshold:    50,
		HighThreshold:      70,
		CriticalThreshold:  85,
		MaxCompareWorkers:  4,
	}

	forecasts := services.NewForecastService(facilityRepo, recordRepo, nil, cfg)
	alerts := services.NewAlertService(facilityRepo, forecasts)
	comparisons := services.NewComparisonService(facilityRepo, recordRepo, forecasts, cfg.MaxCompareWorkers)
	dashboards := services.NewDashboardService(facilityRepo, recordRepo, forecasts, alerts)
	facilities := services.NewFacilityService(facilityRepo, forecasts, nil)
	records := services.NewRecordService(facilityRepo, recordRepo, forecasts, nil)

	router := routes.NewRouter(
		handlers.NewFacilityHandler(facilities),
		handlers.NewRecordHandler(records),
		handlers.NewForecastHandler(forecasts),
		handlers.NewAlertHandler(alerts),
		handlers.NewComparisonHandler(comparisons),
		handlers.NewDashboardHandler(dashboards),
		nil,
	)
	return router.SetupRoutes()
}

func doRequest(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func TestPredictEndpoint(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(facility)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-1", 28, 60)
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodGet, "/api/predict/fac-1?days=7", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result services.PredictionResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "fac-1", result.FacilityID)
	assert.Len(t, result.Points, 7)
	require.NotNil(t, result.Model)
}

func TestPredictEndpoint_ErrorMapping(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	sparse := &entities.Facility{ID: "fac-sparse", Name: "New Wing", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(facility, sparse)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-1", 28, 60)
	seedRecords(recordRepo, "fac-sparse", 5, 60)
	server := newTestServer(facilityRepo, recordRepo)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown facility", "/api/predict/missing?days=7", http.StatusNotFound},
		{"horizon too long", "/api/predict/fac-1?days=50", http.StatusBadRequest},
		{"horizon negative", "/api/predict/fac-1?days=-1", http.StatusBadRequest},
		{"explicit zero horizon", "/api/predict/fac-1?days=0", http.StatusBadRequest},
		{"days not a number", "/api/predict/fac-1?days=soon", http.StatusBadRequest},
		{"insufficient history", "/api/predict/fac-sparse?days=7", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, server, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, recorder.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestForecastEndpoint(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(facility)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-1", 28, 60)
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodGet, "/api/forecast/fac-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result services.ForecastResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Len(t, result.Days, 7)
	assert.False(t, result.BestDay.IsZero())
}

func TestAlertsEndpoint(t *testing.T) {
	crowded := &entities.Facility{ID: "fac-crowded", Name: "City Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	quiet := &entities.Facility{ID: "fac-quiet", Name: "Riverside Clinic", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(crowded, quiet)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-crowded", 28, 90)
	seedRecords(recordRepo, "fac-quiet", 28, 25)
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodGet, "/api/alerts/fac-crowded", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var report services.AlertReport
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	require.NotEmpty(t, report.Alerts)
	assert.Equal(t, "fac-crowded", report.Alerts[0].FacilityID)

	ids := []string{}
	for _, alternate := range report.Alerts[0].AlternateFacilities {
		ids = append(ids, alternate.FacilityID)
	}
	assert.Contains(t, ids, "fac-quiet")
}

func TestCompareEndpoint(t *testing.T) {
	crowded := &entities.Facility{ID: "fac-crowded", Name: "City Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	quiet := &entities.Facility{ID: "fac-quiet", Name: "Riverside Clinic", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(crowded, quiet)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-crowded", 28, 85)
	seedRecords(recordRepo, "fac-quiet", 28, 25)
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodGet, "/api/compare?location=Lagos", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var report services.ComparisonReport
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
	require.Len(t, report.Results, 2)
	assert.Equal(t, "fac-quiet", report.Results[0].FacilityID)
}

func TestCompareEndpoint_MissingLocation(t *testing.T) {
	server := newTestServer(newMemFacilityRepo(), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodGet, "/api/compare", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRecommendationEndpoint_NoFacilities(t *testing.T) {
	server := newTestServer(newMemFacilityRepo(), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodGet, "/api/recommendation/Nairobi", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAvailabilityEndpoint_NoRecords(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	server := newTestServer(newMemFacilityRepo(facility), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodGet, "/api/availability/fac-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var availability entities.Availability
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &availability))
	assert.Equal(t, 0, availability.CurrentOccupied)
	assert.Equal(t, 100, availability.CurrentAvailable)
	assert.Equal(t, "low", availability.Status)
}

func TestCreateFacilityEndpoint(t *testing.T) {
	server := newTestServer(newMemFacilityRepo(), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodPost, "/api/facilities", map[string]interface{}{
		"name":       "General Hospital",
		"location":   "Lagos",
		"total_beds": 120,
		"icu_beds":   12,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var facility entities.Facility
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &facility))
	assert.NotEmpty(t, facility.ID)
	assert.Equal(t, 120, facility.TotalBeds)
}

func TestCreateFacilityEndpoint_Invalid(t *testing.T) {
	server := newTestServer(newMemFacilityRepo(), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodPost, "/api/facilities", map[string]interface{}{
		"name":       "Broken",
		"location":   "Lagos",
		"total_beds": 0,
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateRecordEndpoint(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, ICUBeds: 10, IsActive: true}
	facilityRepo := newMemFacilityRepo(facility)
	recordRepo := newMemRecordRepo()
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodPost, "/api/records", map[string]interface{}{
		"facility_id":   "fac-1",
		"date":          "2026-08-01",
		"occupied_beds": 60,
		"admissions":    10,
		"discharges":    8,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	count, _ := recordRepo.CountByFacility(context.Background(), "fac-1")
	assert.Equal(t, 1, count)
}

func TestCreateRecordEndpoint_Validation(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, ICUBeds: 10, IsActive: true}
	server := newTestServer(newMemFacilityRepo(facility), newMemRecordRepo())

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{
			"over capacity",
			map[string]interface{}{"facility_id": "fac-1", "date": "2026-08-01", "occupied_beds": 150},
			http.StatusBadRequest,
		},
		{
			"bad date",
			map[string]interface{}{"facility_id": "fac-1", "date": "August 1st", "occupied_beds": 50},
			http.StatusBadRequest,
		},
		{
			"unknown facility",
			map[string]interface{}{"facility_id": "missing", "date": "2026-08-01", "occupied_beds": 50},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doRequest(t, server, http.MethodPost, "/api/records", tt.body)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestDashboardEndpoint(t *testing.T) {
	facility := &entities.Facility{ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true}
	facilityRepo := newMemFacilityRepo(facility)
	recordRepo := newMemRecordRepo()
	seedRecords(recordRepo, "fac-1", 28, 60)
	server := newTestServer(facilityRepo, recordRepo)

	recorder := doRequest(t, server, http.MethodGet, "/api/dashboard/fac-1", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var dashboard entities.Dashboard
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &dashboard))
	assert.Equal(t, "fac-1", dashboard.FacilityID)
	assert.Len(t, dashboard.History, 28)
	assert.False(t, dashboard.ForecastUnavailable)
	assert.Len(t, dashboard.Forecast, 7)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(newMemFacilityRepo(), newMemRecordRepo())

	recorder := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}
