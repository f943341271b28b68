package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
)

// RecordService validates and stores daily records. A write for an existing
// (facility, date) key overwrites the stored row: corrections replace, they
// do not accumulate revisions.
type RecordService struct {
	facilityRepo repositories.FacilityRepository
	recordRepo   repositories.RecordRepository
	forecasts    *ForecastService
	eventBus     providers.EventBus
}

// NewRecordService creates a new record service
func NewRecordService(
	facilityRepo repositories.FacilityRepository,
	recordRepo repositories.RecordRepository,
	forecasts *ForecastService,
	eventBus providers.EventBus,
) *RecordService {
	return &RecordService{
		facilityRepo: facilityRepo,
		recordRepo:   recordRepo,
		forecasts:    forecasts,
		eventBus:     eventBus,
	}
}

// Upsert validates the record against its facility's capacity and writes it,
// then invalidates cached forecasts built on the old history
func (s *RecordService) Upsert(ctx context.Context, record *entities.DailyRecord) error {
	facility, err := s.facilityRepo.GetByID(ctx, record.FacilityID)
	if err != nil {
		return err
	}

	if err := record.Validate(facility); err != nil {
		return err
	}

	if err := s.recordRepo.Upsert(ctx, record); err != nil {
		return err
	}

	if err := s.forecasts.InvalidateFacility(ctx, record.FacilityID); err != nil {
		log.Warn().Err(err).Str("facility_id", record.FacilityID).Msg("failed to invalidate forecasts after record upsert")
	}

	if s.eventBus != nil {
		event := entities.NewFacilityEvent(record.FacilityID, entities.FacilityEventTypeRecordUpserted, map[string]interface{}{
			"date":          record.Date.Format("2006-01-02"),
			"occupied_beds": record.OccupiedBeds,
		})
		if err := s.eventBus.Publish(ctx, providers.EventChannelFacilityUpdates, event); err != nil {
			log.Warn().Err(err).Str("facility_id", record.FacilityID).Msg("failed to publish record upsert event")
		}
	}

	return nil
}

// ListByFacility returns a facility's records in a date range, ascending
func (s *RecordService) ListByFacility(ctx context.Context, facilityID string, from, to time.Time) ([]*entities.DailyRecord, error) {
	if _, err := s.facilityRepo.GetByID(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.recordRepo.ListByFacility(ctx, facilityID, from, to)
}

// Latest returns the most recent record for a facility
func (s *RecordService) Latest(ctx context.Context, facilityID string) (*entities.DailyRecord, error) {
	if _, err := s.facilityRepo.GetByID(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.recordRepo.Latest(ctx, facilityID)
}
