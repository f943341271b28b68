package forecasting

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// BestDayToVisit returns the date of the global minimum predicted occupancy
// across the series, earliest date winning ties. This is an exact argmin;
// the patient-facing "best day" feature depends on it.
func BestDayToVisit(points []entities.ForecastPoint) (time.Time, error) {
	if len(points) == 0 {
		return time.Time{}, ErrEmptyForecast
	}

	best := points[0]
	for _, p := range points[1:] {
		if p.PredictedOccupancy < best.PredictedOccupancy ||
			(p.PredictedOccupancy == best.PredictedOccupancy && p.Date.Before(best.Date)) {
			best = p
		}
	}
	return best.Date, nil
}

// ComparisonInput carries one facility's current snapshot and forecast
// series into a batch comparison.
type ComparisonInput struct {
	Facility        *entities.Facility
	CurrentOccupied int
	Points          []entities.ForecastPoint
}

// CompareFacilities scores each facility 0-100 from an equal-weight blend of
// current and forecasted available-capacity fractions, so strictly more
// availability on both axes always scores strictly higher. Facilities with
// an empty forecast series or zero capacity are excluded rather than failing
// the batch. Results are ordered by score descending, then lower average
// predicted occupancy, then facility ID.
func CompareFacilities(inputs []ComparisonInput, th entities.RiskThresholds) []entities.ComparisonResult {
	results := []entities.ComparisonResult{}

	for _, input := range inputs {
		f := input.Facility
		if f == nil || f.TotalBeds <= 0 || len(input.Points) == 0 {
			continue
		}

		avgPredicted := stat.Mean(predictedValues(input.Points), nil)
		utilization, _ := Utilization(float64(input.CurrentOccupied), f.TotalBeds)

		results = append(results, entities.ComparisonResult{
			FacilityID:            f.ID,
			Name:                  f.Name,
			Location:              f.Location,
			TotalBeds:             f.TotalBeds,
			CurrentOccupancy:      input.CurrentOccupied,
			CurrentAvailable:      f.TotalBeds - input.CurrentOccupied,
			UtilizationPercentage: round1(utilization),
			AvgPredictedOccupancy: round1(avgPredicted),
			RecommendationScore:   recommendationScore(f.TotalBeds, input.CurrentOccupied, avgPredicted),
			RiskLevel:             ClassifyUtilization(utilization, th),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RecommendationScore != b.RecommendationScore {
			return a.RecommendationScore > b.RecommendationScore
		}
		if a.AvgPredictedOccupancy != b.AvgPredictedOccupancy {
			return a.AvgPredictedOccupancy < b.AvgPredictedOccupancy
		}
		return a.FacilityID < b.FacilityID
	})

	return results
}

// recommendationScore blends current and forecasted availability fractions
// with equal weight and scales to [0, 100]. Both fractions contribute
// linearly, which preserves the monotonicity contract away from saturation.
func recommendationScore(totalBeds, currentOccupied int, avgPredicted float64) int {
	total := float64(totalBeds)
	currentAvail := (total - float64(currentOccupied)) / total
	forecastAvail := (total - avgPredicted) / total

	score := math.Round(50*currentAvail + 50*forecastAvail)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

func predictedValues(points []entities.ForecastPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.PredictedOccupancy
	}
	return values
}
