package entities

import "time"

// RiskLevel is an ordered occupancy risk band. The zero value is RiskLow;
// the integer ordering LOW < MEDIUM < HIGH < CRITICAL is relied on for
// severity sorting.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the lowercase band name used in API payloads
func (l RiskLevel) String() string {
	switch l {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalJSON renders the risk level as its band name
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// RiskThresholds holds the utilization percentages marking the inclusive
// lower edge of each band. Passed explicitly at call time so per-facility
// or per-tenant overrides are a config concern, not shared state.
type RiskThresholds struct {
	Medium   float64 `json:"medium"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// DefaultRiskThresholds returns the standard 50/70/85 bands
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Medium: 50, High: 70, Critical: 85}
}

// ForecastPoint is a single day's occupancy prediction with a 95% interval.
// Values may exceed the facility's capacity; over-capacity predictions are a
// meaningful over-demand signal, not a data error.
type ForecastPoint struct {
	Date               time.Time `json:"date"`
	PredictedOccupancy float64   `json:"predicted_occupancy"`
	LowerBound         float64   `json:"lower_bound"`
	UpperBound         float64   `json:"upper_bound"`
}

// DayForecast is a forecast point enriched with capacity-derived fields for
// patient-facing responses.
type DayForecast struct {
	Date                  time.Time `json:"date"`
	PredictedOccupancy    float64   `json:"predicted_occupancy"`
	LowerBound            float64   `json:"lower_bound"`
	UpperBound            float64   `json:"upper_bound"`
	PredictedAvailable    float64   `json:"predicted_available"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	RiskLevel             RiskLevel `json:"risk_level"`
}

// ModelInfo describes the fit behind a forecast series
type ModelInfo struct {
	Method          string    `json:"method"`
	TrainingSamples int       `json:"training_samples"`
	TrainingStart   time.Time `json:"training_start"`
	TrainingEnd     time.Time `json:"training_end"`
	Fallback        bool      `json:"fallback,omitempty"`
}
