package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/forecasting"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
)

// AlertService turns forecast series into capacity alerts with alternate
// facility suggestions drawn from the same location.
type AlertService struct {
	facilityRepo repositories.FacilityRepository
	forecasts    *ForecastService
	metrics      *observability.Metrics
}

// NewAlertService creates a new alert service
func NewAlertService(facilityRepo repositories.FacilityRepository, forecasts *ForecastService) *AlertService {
	return &AlertService{
		facilityRepo: facilityRepo,
		forecasts:    forecasts,
	}
}

// SetMetrics enables alert-count instrumentation
func (s *AlertService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// AlertReport is the alert scan result for one facility. FailedFacilityIDs
// lists alternate candidates whose forecasts could not be produced; their
// absence from suggestions is reported rather than failing the scan.
type AlertReport struct {
	FacilityID        string           `json:"facility_id"`
	FacilityName      string           `json:"facility_name"`
	HorizonDays       int              `json:"horizon_days"`
	Alerts            []entities.Alert `json:"alerts"`
	FailedFacilityIDs []string         `json:"failed_facility_ids,omitempty"`
}

// AlertsForFacility forecasts the facility and emits alerts for MEDIUM risk
// days or above
func (s *AlertService) AlertsForFacility(ctx context.Context, facilityID string, horizonDays int) (*AlertReport, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	horizon := s.forecasts.normalizeHorizon(horizonDays)
	points, _, err := s.forecasts.Series(ctx, facility, horizon)
	if err != nil {
		return nil, err
	}

	report := &AlertReport{
		FacilityID:   facility.ID,
		FacilityName: facility.Name,
		HorizonDays:  horizon,
		Alerts:       []entities.Alert{},
	}

	var candidates []forecasting.AlternateCandidate
	if s.anyAtRisk(facility, points) {
		candidates, report.FailedFacilityIDs = s.alternatePool(ctx, facility, horizon)
	}

	alerts, err := forecasting.GenerateAlerts(facility, points, s.forecasts.Thresholds(), candidates)
	if err != nil {
		return nil, err
	}

	report.Alerts = alerts
	observability.RecordAlerts(ctx, s.metrics, facility.ID, len(alerts))
	return report, nil
}

// anyAtRisk reports whether any forecast day reaches MEDIUM utilization,
// gating the cost of forecasting the whole alternate pool
func (s *AlertService) anyAtRisk(facility *entities.Facility, points []entities.ForecastPoint) bool {
	for _, point := range points {
		utilization, err := forecasting.Utilization(point.PredictedOccupancy, facility.TotalBeds)
		if err != nil {
			return false
		}
		if forecasting.ClassifyUtilization(utilization, s.forecasts.Thresholds()) >= entities.RiskMedium {
			return true
		}
	}
	return false
}

// alternatePool forecasts every other active facility in the same location.
// Facilities whose forecast fails (typically too little history) are skipped
// and returned as failed IDs.
func (s *AlertService) alternatePool(ctx context.Context, facility *entities.Facility, horizonDays int) ([]forecasting.AlternateCandidate, []string) {
	active := true
	others, err := s.facilityRepo.List(ctx, repositories.FacilityFilter{
		Location:  facility.Location,
		ExcludeID: facility.ID,
		IsActive:  &active,
	})
	if err != nil {
		log.Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to list alternate candidates")
		return nil, nil
	}

	candidates := make([]forecasting.AlternateCandidate, 0, len(others))
	var failed []string
	for _, other := range others {
		points, _, err := s.forecasts.Series(ctx, other, horizonDays)
		if err != nil {
			failed = append(failed, other.ID)
			continue
		}
		candidates = append(candidates, forecasting.AlternateCandidate{
			Facility: other,
			Points:   points,
		})
	}

	return candidates, failed
}
