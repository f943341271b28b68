package entities

import "time"

// Availability is the current occupancy snapshot for a facility
type Availability struct {
	FacilityID            string  `json:"facility_id"`
	Name                  string  `json:"name"`
	Location              string  `json:"location"`
	TotalBeds             int     `json:"total_beds"`
	CurrentOccupied       int     `json:"current_occupied"`
	CurrentAvailable      int     `json:"current_available"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
	Status                string  `json:"status"`
	LastUpdated           *string `json:"last_updated"`
}

// HistoryPoint is one day of recorded metrics with derived utilization
type HistoryPoint struct {
	Date           time.Time `json:"date"`
	OccupiedBeds   int       `json:"occupied_beds"`
	Admissions     int       `json:"admissions"`
	Discharges     int       `json:"discharges"`
	ICUOccupied    int       `json:"icu_occupied"`
	EmergencyCases int       `json:"emergency_cases"`
	Utilization    float64   `json:"utilization"`
}

// Dashboard aggregates everything the admin view renders. All derived
// metrics are computed server-side so clients only display engine output.
type Dashboard struct {
	FacilityID            string         `json:"facility_id"`
	Name                  string         `json:"name"`
	Location              string         `json:"location"`
	TotalBeds             int            `json:"total_beds"`
	ICUBeds               int            `json:"icu_beds"`
	Current               *Availability  `json:"current"`
	History               []HistoryPoint `json:"history"`
	RollingAvgOccupancy   float64        `json:"rolling_avg_occupancy_7d"`
	WeekOverWeekTrendPct  float64        `json:"week_over_week_trend_pct"`
	Forecast              []DayForecast  `json:"forecast"`
	BestDayToVisit        *time.Time     `json:"best_day_to_visit"`
	Alerts                []Alert        `json:"alerts"`
	ForecastUnavailable   bool           `json:"forecast_unavailable"`
}
