package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
)

// FacilityService handles business logic for facilities
type FacilityService struct {
	repo      repositories.FacilityRepository
	forecasts *ForecastService
	eventBus  providers.EventBus
}

// NewFacilityService creates a new facility service
func NewFacilityService(repo repositories.FacilityRepository, forecasts *ForecastService, eventBus providers.EventBus) *FacilityService {
	return &FacilityService{
		repo:      repo,
		forecasts: forecasts,
		eventBus:  eventBus,
	}
}

// Create validates and stores a new facility
func (s *FacilityService) Create(ctx context.Context, facility *entities.Facility) error {
	if err := facility.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, facility)
}

// GetByID retrieves a facility by ID
func (s *FacilityService) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves facilities matching the filter
func (s *FacilityService) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	return s.repo.List(ctx, filter)
}

// Update validates and stores facility changes. A capacity change invalidates
// cached forecasts, whose utilization figures were computed against the old
// bed count, and publishes a capacity update event.
func (s *FacilityService) Update(ctx context.Context, facility *entities.Facility) error {
	if err := facility.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, facility.ID)
	if err != nil {
		return err
	}
	capacityChanged := existing.TotalBeds != facility.TotalBeds || existing.ICUBeds != facility.ICUBeds

	if err := s.repo.Update(ctx, facility); err != nil {
		return err
	}

	if capacityChanged {
		s.onCapacityChange(ctx, facility, map[string]interface{}{
			"total_beds": facility.TotalBeds,
			"icu_beds":   facility.ICUBeds,
		})
	}

	return nil
}

// Delete soft-deletes a facility and drops its cached forecasts
func (s *FacilityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.forecasts.InvalidateFacility(ctx, id); err != nil {
		log.Warn().Err(err).Str("facility_id", id).Msg("failed to invalidate forecasts after delete")
	}
	return nil
}

func (s *FacilityService) onCapacityChange(ctx context.Context, facility *entities.Facility, changed map[string]interface{}) {
	if err := s.forecasts.InvalidateFacility(ctx, facility.ID); err != nil {
		log.Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to invalidate forecasts after capacity change")
	}

	if s.eventBus == nil {
		return
	}
	event := entities.NewFacilityEvent(facility.ID, entities.FacilityEventTypeCapacityUpdate, changed)
	if err := s.eventBus.Publish(ctx, providers.EventChannelFacilityUpdates, event); err != nil {
		log.Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to publish capacity update event")
	}
}
