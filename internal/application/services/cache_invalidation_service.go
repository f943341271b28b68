package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
)

// CacheInvalidationService drops stale cache entries in response to facility
// events. It covers instances other than the one that handled the write:
// the writer invalidates its own cache inline, every other instance learns
// about the change over the event bus.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelFacilityUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to facility updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.FacilityEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			// A closed channel means the bus is gone; don't spin on it
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent drops the forecast series and cached facility entry for the
// event's facility. List caches keep their short TTL and expire naturally;
// invalidating them on every record write would stampede the database.
func (s *CacheInvalidationService) handleEvent(event *entities.FacilityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Str("facility_id", event.FacilityID).
		Str("event_type", string(event.EventType)).
		Msg("processing cache invalidation")

	if err := s.InvalidateFacilityCache(ctx, event.FacilityID); err != nil {
		log.Warn().Err(err).Str("facility_id", event.FacilityID).Msg("failed to invalidate facility caches")
	}
}

// InvalidateFacilityCache drops every cached entry for a specific facility
func (s *CacheInvalidationService) InvalidateFacilityCache(ctx context.Context, facilityID string) error {
	patterns := []string{
		fmt.Sprintf("forecast:%s:*", facilityID),
		fmt.Sprintf("facility:%s", facilityID),
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}

	return nil
}

// InvalidateForecastCaches drops every cached forecast series. For use during
// maintenance or bulk data loads, not the per-event path.
func (s *CacheInvalidationService) InvalidateForecastCaches(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, "forecast:*"); err != nil {
		return fmt.Errorf("failed to invalidate forecast caches: %w", err)
	}
	log.Info().Msg("invalidated all forecast caches")
	return nil
}
