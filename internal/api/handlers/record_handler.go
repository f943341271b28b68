package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/zatekoja/carecapacity/internal/application/services"
	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// RecordHandler handles daily record HTTP requests
type RecordHandler struct {
	records *services.RecordService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records *services.RecordService) *RecordHandler {
	return &RecordHandler{
		records: records,
	}
}

type recordRequest struct {
	FacilityID     string `json:"facility_id"`
	Date           string `json:"date"`
	Admissions     int    `json:"admissions"`
	Discharges     int    `json:"discharges"`
	OccupiedBeds   int    `json:"occupied_beds"`
	ICUOccupied    int    `json:"icu_occupied"`
	EmergencyCases int    `json:"emergency_cases"`
}

// CreateRecord handles POST /api/records. A record for an existing
// (facility, date) pair overwrites the stored row.
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	record := entities.NewDailyRecord(req.FacilityID, date)
	record.Admissions = req.Admissions
	record.Discharges = req.Discharges
	record.OccupiedBeds = req.OccupiedBeds
	record.ICUOccupied = req.ICUOccupied
	record.EmergencyCases = req.EmergencyCases

	if err := h.records.Upsert(r.Context(), record); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}

// ListRecords handles GET /api/records/{facilityID}
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "from must be formatted YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "to must be formatted YYYY-MM-DD")
			return
		}
		to = parsed
	}

	records, err := h.records.ListByFacility(r.Context(), facilityID, from, to)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// LatestRecord handles GET /api/records/{facilityID}/latest
func (h *RecordHandler) LatestRecord(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("facilityID")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	record, err := h.records.Latest(r.Context(), facilityID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}
