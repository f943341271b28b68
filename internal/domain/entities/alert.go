package entities

import "time"

// Alert flags a forecast day whose predicted utilization is at MEDIUM risk
// or above. LOW days never produce alerts; the absence of alerts is the
// all-clear signal.
type Alert struct {
	FacilityID            string              `json:"facility_id"`
	Date                  time.Time           `json:"date"`
	Severity              RiskLevel           `json:"severity"`
	PredictedOccupancy    float64             `json:"predicted_occupancy"`
	UtilizationPercentage float64             `json:"utilization_percentage"`
	Message               string              `json:"message"`
	AlternateFacilities   []AlternateFacility `json:"alternate_facilities,omitempty"`
}

// AlternateFacility summarizes a nearby facility with better forecasted
// availability on the same date as an alert.
type AlternateFacility struct {
	FacilityID            string    `json:"facility_id"`
	Name                  string    `json:"name"`
	Location              string    `json:"location"`
	TotalBeds             int       `json:"total_beds"`
	PredictedOccupancy    float64   `json:"predicted_occupancy"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	RiskLevel             RiskLevel `json:"risk_level"`
}
