package entities

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// DailyRecord stores one day of operational metrics for a facility.
// At most one record exists per (facility, date); corrections overwrite
// the existing row rather than creating revisions.
type DailyRecord struct {
	ID             string    `json:"id" db:"id"`
	FacilityID     string    `json:"facility_id" db:"facility_id"`
	Date           time.Time `json:"date" db:"date"`
	Admissions     int       `json:"admissions" db:"admissions"`
	Discharges     int       `json:"discharges" db:"discharges"`
	OccupiedBeds   int       `json:"occupied_beds" db:"occupied_beds"`
	ICUOccupied    int       `json:"icu_occupied" db:"icu_occupied"`
	EmergencyCases int       `json:"emergency_cases" db:"emergency_cases"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewDailyRecord creates a daily record with a generated ID. The date is
// truncated to midnight UTC so the (facility, date) key is calendar-stable.
func NewDailyRecord(facilityID string, date time.Time) *DailyRecord {
	return &DailyRecord{
		ID:         uuid.NewString(),
		FacilityID: facilityID,
		Date:       date.UTC().Truncate(24 * time.Hour),
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the record invariants against the owning facility's capacity
func (r *DailyRecord) Validate(facility *Facility) error {
	if r.FacilityID == "" {
		return apperrors.NewValidationError("facility_id is required")
	}
	if r.Date.IsZero() {
		return apperrors.NewValidationError("date is required")
	}
	if r.Admissions < 0 || r.Discharges < 0 || r.EmergencyCases < 0 {
		return apperrors.NewValidationError("admissions, discharges and emergency_cases must be non-negative")
	}
	if r.OccupiedBeds < 0 || r.OccupiedBeds > facility.TotalBeds {
		return apperrors.NewValidationError("occupied_beds must be between 0 and the facility's total_beds")
	}
	if r.ICUOccupied < 0 || r.ICUOccupied > facility.ICUBeds {
		return apperrors.NewValidationError("icu_occupied must be between 0 and the facility's icu_beds")
	}
	return nil
}

// Utilization returns occupied beds as a percentage of the facility's capacity
func (r *DailyRecord) Utilization(totalBeds int) float64 {
	if totalBeds <= 0 {
		return 0
	}
	return float64(r.OccupiedBeds) / float64(totalBeds) * 100
}
