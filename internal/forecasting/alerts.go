package forecasting

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// maxAlternates caps the alternate-facility suggestions attached to an alert
const maxAlternates = 5

// AlternateCandidate pairs a nearby facility with its forecast series,
// forming the pool scanned for better-availability suggestions.
type AlternateCandidate struct {
	Facility *entities.Facility
	Points   []entities.ForecastPoint
}

// GenerateAlerts scans a forecast series and emits one alert per day at
// MEDIUM risk or above. LOW days produce nothing: an empty result is the
// all-clear signal. The returned slice is ordered by severity descending,
// ties broken by ascending date. An empty series yields an empty slice,
// not an error; horizon validation belongs to the model.
func GenerateAlerts(facility *entities.Facility, points []entities.ForecastPoint, th entities.RiskThresholds, alternates []AlternateCandidate) ([]entities.Alert, error) {
	alerts := []entities.Alert{}

	for _, point := range points {
		utilization, err := Utilization(point.PredictedOccupancy, facility.TotalBeds)
		if err != nil {
			return nil, err
		}

		severity := ClassifyUtilization(utilization, th)
		if severity < entities.RiskMedium {
			continue
		}

		alerts = append(alerts, entities.Alert{
			FacilityID:            facility.ID,
			Date:                  point.Date,
			Severity:              severity,
			PredictedOccupancy:    point.PredictedOccupancy,
			UtilizationPercentage: round1(utilization),
			Message:               alertMessage(facility.Name, severity, point, utilization),
			AlternateFacilities:   suggestAlternates(point, th, alternates),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return alerts[i].Severity > alerts[j].Severity
		}
		return alerts[i].Date.Before(alerts[j].Date)
	})

	return alerts, nil
}

// suggestAlternates selects same-date candidates forecast at LOW or MEDIUM
// risk, ranked by ascending utilization, at most maxAlternates. No qualifying
// candidate means an empty list, not an error.
func suggestAlternates(point entities.ForecastPoint, th entities.RiskThresholds, candidates []AlternateCandidate) []entities.AlternateFacility {
	suggestions := []entities.AlternateFacility{}

	for _, candidate := range candidates {
		match, ok := pointOn(candidate.Points, point.Date)
		if !ok {
			continue
		}

		utilization, err := Utilization(match.PredictedOccupancy, candidate.Facility.TotalBeds)
		if err != nil {
			continue
		}

		risk := ClassifyUtilization(utilization, th)
		if risk > entities.RiskMedium {
			continue
		}

		suggestions = append(suggestions, entities.AlternateFacility{
			FacilityID:            candidate.Facility.ID,
			Name:                  candidate.Facility.Name,
			Location:              candidate.Facility.Location,
			TotalBeds:             candidate.Facility.TotalBeds,
			PredictedOccupancy:    match.PredictedOccupancy,
			UtilizationPercentage: round1(utilization),
			RiskLevel:             risk,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].UtilizationPercentage < suggestions[j].UtilizationPercentage
	})
	if len(suggestions) > maxAlternates {
		suggestions = suggestions[:maxAlternates]
	}
	return suggestions
}

func alertMessage(name string, severity entities.RiskLevel, point entities.ForecastPoint, utilization float64) string {
	date := point.Date.Format("2006-01-02")
	switch severity {
	case entities.RiskCritical:
		return fmt.Sprintf("CRITICAL: %s predicted to reach %.1f%% occupancy (%.0f beds) on %s. Immediate action recommended to prevent overcrowding.",
			name, utilization, point.PredictedOccupancy, date)
	case entities.RiskHigh:
		return fmt.Sprintf("HIGH: %s predicted to reach %.1f%% occupancy (%.0f beds) on %s. Long wait times likely; prepare contingency plans.",
			name, utilization, point.PredictedOccupancy, date)
	default:
		return fmt.Sprintf("MODERATE: %s predicted to reach %.1f%% occupancy (%.0f beds) on %s. Monitor closely.",
			name, utilization, point.PredictedOccupancy, date)
	}
}

func pointOn(points []entities.ForecastPoint, date time.Time) (entities.ForecastPoint, bool) {
	for _, p := range points {
		if sameDay(p.Date, date) {
			return p, true
		}
	}
	return entities.ForecastPoint{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
