package services

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
)

// historyWindowDays is how much recorded history the dashboard shows
const historyWindowDays = 30

// DashboardService assembles the admin view for one facility. Every derived
// metric is computed here so clients only render engine output. A forecast
// failure degrades the dashboard to history-only instead of failing it.
type DashboardService struct {
	facilityRepo repositories.FacilityRepository
	recordRepo   repositories.RecordRepository
	forecasts    *ForecastService
	alerts       *AlertService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	facilityRepo repositories.FacilityRepository,
	recordRepo repositories.RecordRepository,
	forecasts *ForecastService,
	alerts *AlertService,
) *DashboardService {
	return &DashboardService{
		facilityRepo: facilityRepo,
		recordRepo:   recordRepo,
		forecasts:    forecasts,
		alerts:       alerts,
	}
}

// Dashboard builds the full dashboard payload for a facility
func (s *DashboardService) Dashboard(ctx context.Context, facilityID string) (*entities.Dashboard, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	current, err := s.forecasts.Availability(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	from := time.Now().UTC().AddDate(0, 0, -historyWindowDays)
	records, err := s.recordRepo.ListByFacility(ctx, facilityID, from, time.Time{})
	if err != nil {
		return nil, err
	}

	history := make([]entities.HistoryPoint, len(records))
	for i, record := range records {
		history[i] = entities.HistoryPoint{
			Date:           record.Date,
			OccupiedBeds:   record.OccupiedBeds,
			Admissions:     record.Admissions,
			Discharges:     record.Discharges,
			ICUOccupied:    record.ICUOccupied,
			EmergencyCases: record.EmergencyCases,
			Utilization:    math.Round(record.Utilization(facility.TotalBeds)*10) / 10,
		}
	}

	dashboard := &entities.Dashboard{
		FacilityID:           facility.ID,
		Name:                 facility.Name,
		Location:             facility.Location,
		TotalBeds:            facility.TotalBeds,
		ICUBeds:              facility.ICUBeds,
		Current:              current,
		History:              history,
		RollingAvgOccupancy:  rollingAverage(records, 7),
		WeekOverWeekTrendPct: weekOverWeekTrend(records),
		Forecast:             []entities.DayForecast{},
		Alerts:               []entities.Alert{},
	}

	forecast, err := s.forecasts.Forecast(ctx, facilityID, 0)
	if err != nil {
		log.Warn().Err(err).Str("facility_id", facilityID).Msg("dashboard forecast unavailable")
		dashboard.ForecastUnavailable = true
		return dashboard, nil
	}

	dashboard.Forecast = forecast.Days
	bestDay := forecast.BestDay
	dashboard.BestDayToVisit = &bestDay

	report, err := s.alerts.AlertsForFacility(ctx, facilityID, 0)
	if err != nil {
		log.Warn().Err(err).Str("facility_id", facilityID).Msg("dashboard alerts unavailable")
		return dashboard, nil
	}
	dashboard.Alerts = report.Alerts

	return dashboard, nil
}

// rollingAverage is the mean occupancy over the most recent window of records
func rollingAverage(records []*entities.DailyRecord, window int) float64 {
	if len(records) == 0 {
		return 0
	}
	start := len(records) - window
	if start < 0 {
		start = 0
	}

	values := make([]float64, 0, window)
	for _, record := range records[start:] {
		values = append(values, float64(record.OccupiedBeds))
	}
	return math.Round(stat.Mean(values, nil)*10) / 10
}

// weekOverWeekTrend is the percentage change of the last 7 days' mean
// occupancy against the 7 days before that. Fewer than 14 records, or a
// zero prior week, yield 0.
func weekOverWeekTrend(records []*entities.DailyRecord) float64 {
	if len(records) < 14 {
		return 0
	}

	recent := make([]float64, 0, 7)
	prior := make([]float64, 0, 7)
	for _, record := range records[len(records)-7:] {
		recent = append(recent, float64(record.OccupiedBeds))
	}
	for _, record := range records[len(records)-14 : len(records)-7] {
		prior = append(prior, float64(record.OccupiedBeds))
	}

	priorMean := stat.Mean(prior, nil)
	if priorMean == 0 {
		return 0
	}

	trend := (stat.Mean(recent, nil) - priorMean) / priorMean * 100
	return math.Round(trend*10) / 10
}
