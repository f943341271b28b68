package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/forecasting"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
	"github.com/zatekoja/carecapacity/pkg/config"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// ForecastService orchestrates model fits over stored history and caches
// the resulting series. Forecasts are recomputed from the full history on
// every cache miss; writes invalidate the facility's cached series.
type ForecastService struct {
	facilityRepo   repositories.FacilityRepository
	recordRepo     repositories.RecordRepository
	cache          providers.CacheProvider
	model          *forecasting.Model
	thresholds     entities.RiskThresholds
	defaultHorizon int
	cacheTTL       int
	metrics        *observability.Metrics
}

// NewForecastService creates a new forecast service
func NewForecastService(
	facilityRepo repositories.FacilityRepository,
	recordRepo repositories.RecordRepository,
	cache providers.CacheProvider,
	cfg config.ForecastConfig,
) *ForecastService {
	return &ForecastService{
		facilityRepo: facilityRepo,
		recordRepo:   recordRepo,
		cache:        cache,
		model:        forecasting.NewModel(),
		thresholds: entities.RiskThresholds{
			Medium:   cfg.MediumThreshold,
			High:     cfg.HighThreshold,
			Critical: cfg.CriticalThreshold,
		},
		defaultHorizon: cfg.DefaultHorizonDays,
		cacheTTL:       cfg.CacheTTLSeconds,
	}
}

// PredictionResult carries the raw forecast series for a facility
type PredictionResult struct {
	FacilityID   string                   `json:"facility_id"`
	FacilityName string                   `json:"facility_name"`
	HorizonDays  int                      `json:"horizon_days"`
	Points       []entities.ForecastPoint `json:"points"`
	Model        *entities.ModelInfo      `json:"model"`
}

// ForecastResult carries the patient-facing forecast with per-day risk
type ForecastResult struct {
	FacilityID   string                 `json:"facility_id"`
	FacilityName string                 `json:"facility_name"`
	TotalBeds    int                    `json:"total_beds"`
	HorizonDays  int                    `json:"horizon_days"`
	Days         []entities.DayForecast `json:"days"`
	BestDay      time.Time              `json:"best_day_to_visit"`
	Model        *entities.ModelInfo    `json:"model"`
}

// SetMetrics enables forecast-fit instrumentation
func (s *ForecastService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Thresholds returns the risk thresholds this service classifies with
func (s *ForecastService) Thresholds() entities.RiskThresholds {
	return s.thresholds
}

// Predict returns the raw forecast points for a facility
func (s *ForecastService) Predict(ctx context.Context, facilityID string, horizonDays int) (*PredictionResult, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	horizon := s.normalizeHorizon(horizonDays)
	points, info, err := s.Series(ctx, facility, horizon)
	if err != nil {
		return nil, err
	}

	return &PredictionResult{
		FacilityID:   facility.ID,
		FacilityName: facility.Name,
		HorizonDays:  horizon,
		Points:       points,
		Model:        info,
	}, nil
}

// Forecast returns per-day forecasts enriched with risk levels, predicted
// availability and the best day to visit
func (s *ForecastService) Forecast(ctx context.Context, facilityID string, horizonDays int) (*ForecastResult, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	horizon := s.normalizeHorizon(horizonDays)
	points, info, err := s.Series(ctx, facility, horizon)
	if err != nil {
		return nil, err
	}

	days := make([]entities.DayForecast, 0, len(points))
	for _, point := range points {
		utilization, err := forecasting.Utilization(point.PredictedOccupancy, facility.TotalBeds)
		if err != nil {
			return nil, err
		}

		days = append(days, entities.DayForecast{
			Date:                  point.Date,
			PredictedOccupancy:    point.PredictedOccupancy,
			LowerBound:            point.LowerBound,
			UpperBound:            point.UpperBound,
			PredictedAvailable:    math.Max(0, float64(facility.TotalBeds)-point.PredictedOccupancy),
			UtilizationPercentage: math.Round(utilization*10) / 10,
			RiskLevel:             forecasting.ClassifyUtilization(utilization, s.thresholds),
		})
	}

	bestDay, err := forecasting.BestDayToVisit(points)
	if err != nil {
		return nil, err
	}

	return &ForecastResult{
		FacilityID:   facility.ID,
		FacilityName: facility.Name,
		TotalBeds:    facility.TotalBeds,
		HorizonDays:  horizon,
		Days:         days,
		BestDay:      bestDay,
		Model:        info,
	}, nil
}

// cachedSeries is the cache payload for one (facility, horizon) series
type cachedSeries struct {
	Points []entities.ForecastPoint `json:"points"`
	Model  *entities.ModelInfo      `json:"model"`
}

// Series produces the forecast series for an already-loaded facility,
// serving from cache when a fresh fit is available
func (s *ForecastService) Series(ctx context.Context, facility *entities.Facility, horizonDays int) ([]entities.ForecastPoint, *entities.ModelInfo, error) {
	cacheKey := forecastCacheKey(facility.ID, horizonDays)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var payload cachedSeries
			if err := json.Unmarshal(cached, &payload); err == nil && len(payload.Points) > 0 {
				return payload.Points, payload.Model, nil
			}
		}
	}

	// Cheap count precheck so a facility without enough history fails
	// before its full record set is loaded
	if count, err := s.recordRepo.CountByFacility(ctx, facility.ID); err == nil && count < forecasting.MinHistory {
		return nil, nil, fmt.Errorf("%w: have %d", forecasting.ErrInsufficientHistory, count)
	}

	records, err := s.recordRepo.ListByFacility(ctx, facility.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}

	history := make([]forecasting.Observation, len(records))
	for i, record := range records {
		history[i] = forecasting.Observation{
			Date:         record.Date,
			OccupiedBeds: float64(record.OccupiedBeds),
		}
	}

	fitStart := time.Now()
	points, info, err := s.model.Forecast(history, horizonDays)
	if err != nil {
		return nil, nil, err
	}
	observability.RecordForecastMetric(ctx, s.metrics, facility.ID, info.Fallback, time.Since(fitStart))

	if s.cache != nil {
		go func() {
			bgCtx := context.Background()
			if data, err := json.Marshal(cachedSeries{Points: points, Model: info}); err == nil {
				if err := s.cache.Set(bgCtx, cacheKey, data, s.cacheTTL); err != nil {
					log.Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to cache forecast series")
				}
			}
		}()
	}

	return points, info, nil
}

// Availability returns the facility's current occupancy snapshot. A facility
// with no records yet gets a zeroed payload, not an error.
func (s *ForecastService) Availability(ctx context.Context, facilityID string) (*entities.Availability, error) {
	facility, err := s.facilityRepo.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	availability := &entities.Availability{
		FacilityID:       facility.ID,
		Name:             facility.Name,
		Location:         facility.Location,
		TotalBeds:        facility.TotalBeds,
		CurrentAvailable: facility.TotalBeds,
		Status:           entities.RiskLow.String(),
	}

	latest, err := s.recordRepo.Latest(ctx, facilityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return availability, nil
		}
		return nil, err
	}

	utilization := latest.Utilization(facility.TotalBeds)
	lastUpdated := latest.Date.Format("2006-01-02")

	availability.CurrentOccupied = latest.OccupiedBeds
	availability.CurrentAvailable = facility.TotalBeds - latest.OccupiedBeds
	availability.UtilizationPercentage = math.Round(utilization*10) / 10
	availability.Status = forecasting.ClassifyUtilization(utilization, s.thresholds).String()
	availability.LastUpdated = &lastUpdated

	return availability, nil
}

// InvalidateFacility drops every cached series for a facility. Called after
// record upserts and capacity changes.
func (s *ForecastService) InvalidateFacility(ctx context.Context, facilityID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeletePattern(ctx, forecastCacheKeyPattern(facilityID))
}

func (s *ForecastService) normalizeHorizon(horizonDays int) int {
	if horizonDays == 0 {
		return s.defaultHorizon
	}
	return horizonDays
}

func forecastCacheKey(facilityID string, horizonDays int) string {
	return fmt.Sprintf("forecast:%s:%d", facilityID, horizonDays)
}

func forecastCacheKeyPattern(facilityID string) string {
	return fmt.Sprintf("forecast:%s:*", facilityID)
}
