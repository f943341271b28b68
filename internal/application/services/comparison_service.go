package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/forecasting"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// ComparisonService ranks facilities in a location by current and forecasted
// availability. Per-facility forecasts run concurrently across a bounded
// worker set; a facility whose forecast fails is excluded from the ranking
// and reported, never failing the batch.
type ComparisonService struct {
	facilityRepo repositories.FacilityRepository
	recordRepo   repositories.RecordRepository
	forecasts    *ForecastService
	maxWorkers   int
}

// NewComparisonService creates a new comparison service
func NewComparisonService(
	facilityRepo repositories.FacilityRepository,
	recordRepo repositories.RecordRepository,
	forecasts *ForecastService,
	maxWorkers int,
) *ComparisonService {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &ComparisonService{
		facilityRepo: facilityRepo,
		recordRepo:   recordRepo,
		forecasts:    forecasts,
		maxWorkers:   maxWorkers,
	}
}

// ComparisonReport is the ranked outcome of a batch comparison
type ComparisonReport struct {
	Location          string                      `json:"location"`
	Results           []entities.ComparisonResult `json:"results"`
	FailedFacilityIDs []string                    `json:"failed_facility_ids,omitempty"`
}

// Recommendation names the top-ranked facility with a human-readable reason
type Recommendation struct {
	Location string                     `json:"location"`
	Best     *entities.ComparisonResult `json:"best"`
	Reason   string                     `json:"reason"`
}

// Compare forecasts every active facility in a location and ranks them
func (s *ComparisonService) Compare(ctx context.Context, location string, horizonDays int) (*ComparisonReport, error) {
	active := true
	facilities, err := s.facilityRepo.List(ctx, repositories.FacilityFilter{
		Location: location,
		IsActive: &active,
	})
	if err != nil {
		return nil, err
	}

	horizon := s.forecasts.normalizeHorizon(horizonDays)

	inputs := make([]*forecasting.ComparisonInput, len(facilities))
	failed := make([]string, len(facilities))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxWorkers)
	for i, facility := range facilities {
		wg.Add(1)
		go func(i int, facility *entities.Facility) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			input, err := s.buildInput(ctx, facility, horizon)
			if err != nil {
				failed[i] = facility.ID
				return
			}
			inputs[i] = input
		}(i, facility)
	}
	wg.Wait()

	report := &ComparisonReport{Location: location}
	collected := make([]forecasting.ComparisonInput, 0, len(inputs))
	for i, input := range inputs {
		if input != nil {
			collected = append(collected, *input)
			continue
		}
		if failed[i] != "" {
			report.FailedFacilityIDs = append(report.FailedFacilityIDs, failed[i])
		}
	}
	sort.Strings(report.FailedFacilityIDs)

	report.Results = forecasting.CompareFacilities(collected, s.forecasts.Thresholds())
	return report, nil
}

// Recommend returns the best facility for a location
func (s *ComparisonService) Recommend(ctx context.Context, location string, horizonDays int) (*Recommendation, error) {
	report, err := s.Compare(ctx, location, horizonDays)
	if err != nil {
		return nil, err
	}

	if len(report.Results) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no rankable facilities found in %q", location))
	}

	best := report.Results[0]
	reason := fmt.Sprintf(
		"%s has %d of %d beds available now (%.1f%% utilization) and the lowest expected demand over the next days (avg %.1f beds occupied).",
		best.Name, best.CurrentAvailable, best.TotalBeds, best.UtilizationPercentage, best.AvgPredictedOccupancy,
	)

	return &Recommendation{
		Location: location,
		Best:     &best,
		Reason:   reason,
	}, nil
}

// buildInput loads the current snapshot and forecast series for one facility
func (s *ComparisonService) buildInput(ctx context.Context, facility *entities.Facility, horizonDays int) (*forecasting.ComparisonInput, error) {
	latest, err := s.recordRepo.Latest(ctx, facility.ID)
	if err != nil {
		return nil, err
	}

	points, _, err := s.forecasts.Series(ctx, facility, horizonDays)
	if err != nil {
		return nil, err
	}

	return &forecasting.ComparisonInput{
		Facility:        facility,
		CurrentOccupied: latest.OccupiedBeds,
		Points:          points,
	}, nil
}
