package entities

// ComparisonResult ranks one facility by current and forecasted availability.
// A batch of results is ordered by RecommendationScore descending, ties broken
// by lower AvgPredictedOccupancy, then by FacilityID for determinism.
type ComparisonResult struct {
	FacilityID            string    `json:"facility_id"`
	Name                  string    `json:"name"`
	Location              string    `json:"location"`
	TotalBeds             int       `json:"total_beds"`
	CurrentOccupancy      int       `json:"current_occupancy"`
	CurrentAvailable      int       `json:"current_available"`
	UtilizationPercentage float64   `json:"utilization_percentage"`
	AvgPredictedOccupancy float64   `json:"avg_predicted_occupancy"`
	RecommendationScore   int       `json:"recommendation_score"`
	RiskLevel             RiskLevel `json:"risk_level"`
}
