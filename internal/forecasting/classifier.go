package forecasting

import (
	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// Utilization returns predicted occupancy as a percentage of total beds.
// Facility invariants make totalBeds == 0 impossible, but it is defended
// against rather than dividing by zero.
func Utilization(predictedOccupancy float64, totalBeds int) (float64, error) {
	if totalBeds == 0 {
		return 0, ErrZeroCapacity
	}
	return predictedOccupancy / float64(totalBeds) * 100, nil
}

// Classify maps a predicted occupancy to a risk band. Band edges are
// inclusive at the lower end: exactly 85.0% is CRITICAL and exactly 70.0%
// is HIGH. Utilization above 100% is still CRITICAL, never an error.
func Classify(predictedOccupancy float64, totalBeds int, th entities.RiskThresholds) (entities.RiskLevel, error) {
	utilization, err := Utilization(predictedOccupancy, totalBeds)
	if err != nil {
		return entities.RiskLow, err
	}
	return ClassifyUtilization(utilization, th), nil
}

// ClassifyUtilization classifies an already-computed utilization percentage
func ClassifyUtilization(utilization float64, th entities.RiskThresholds) entities.RiskLevel {
	switch {
	case utilization >= th.Critical:
		return entities.RiskCritical
	case utilization >= th.High:
		return entities.RiskHigh
	case utilization >= th.Medium:
		return entities.RiskMedium
	default:
		return entities.RiskLow
	}
}
