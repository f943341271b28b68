package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/providers"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
)

// CachedFacilityAdapter wraps FacilityAdapter with caching
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedFacilityAdapter creates a new cached facility adapter. metrics may
// be nil, which disables hit/miss counting.
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.FacilityRepository {
	return &CachedFacilityAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache TTLs (in seconds)
const (
	facilityByIDTTL   = 300 // 5 minutes for single facility
	facilitiesListTTL = 180 // 3 minutes for lists
)

// Cache key generators
func facilityCacheKey(id string) string {
	return fmt.Sprintf("facility:%s", id)
}

func facilitiesListCacheKey(filter repositories.FacilityFilter) string {
	active := "any"
	if filter.IsActive != nil {
		active = fmt.Sprintf("%t", *filter.IsActive)
	}
	return fmt.Sprintf("facilities:list:%s:%s:%s:%d:%d", filter.Location, filter.ExcludeID, active, filter.Limit, filter.Offset)
}

// GetByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	cacheKey := facilityCacheKey(id)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var facility entities.Facility
		if err := json.Unmarshal(cached, &facility); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, cacheKey)
			return &facility, nil
		}
		// If unmarshal fails, continue to fetch from DB
		log.Warn().Str("facility_id", id).Msg("failed to unmarshal cached facility")
	}

	// Cache miss - fetch from database
	observability.RecordCacheMiss(ctx, a.metrics, cacheKey)
	facility, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(facility); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, facilityByIDTTL); err != nil {
				log.Warn().Err(err).Str("facility_id", id).Msg("failed to cache facility")
			}
		}
	}()

	return facility, nil
}

// List retrieves a list of facilities with caching
func (a *CachedFacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	cacheKey := facilitiesListCacheKey(filter)

	// Try to get from cache first
	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var facilities []*entities.Facility
		if err := json.Unmarshal(cached, &facilities); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, cacheKey)
			return facilities, nil
		}
		log.Warn().Msg("failed to unmarshal cached facilities list")
	}

	// Cache miss - fetch from database
	observability.RecordCacheMiss(ctx, a.metrics, cacheKey)
	facilities, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(facilities); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, facilitiesListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache facilities list")
			}
		}
	}()

	return facilities, nil
}

// Create creates a facility and invalidates related caches
func (a *CachedFacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	err := a.adapter.Create(ctx, facility)
	if err != nil {
		return err
	}

	// Invalidate list caches asynchronously
	go func() {
		bgCtx := context.Background()
		if err := a.cache.DeletePattern(bgCtx, "facilities:list:*"); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate facilities list cache")
		}
	}()

	return nil
}

// Update updates a facility and invalidates its cache
func (a *CachedFacilityAdapter) Update(ctx context.Context, facility *entities.Facility) error {
	err := a.adapter.Update(ctx, facility)
	if err != nil {
		return err
	}

	a.invalidate(facility.ID)
	return nil
}

// Delete deletes a facility and invalidates its cache
func (a *CachedFacilityAdapter) Delete(ctx context.Context, id string) error {
	err := a.adapter.Delete(ctx, id)
	if err != nil {
		return err
	}

	a.invalidate(id)
	return nil
}

func (a *CachedFacilityAdapter) invalidate(facilityID string) {
	go func() {
		bgCtx := context.Background()

		cacheKey := facilityCacheKey(facilityID)
		if err := a.cache.Delete(bgCtx, cacheKey); err != nil {
			log.Warn().Err(err).Str("facility_id", facilityID).Msg("failed to invalidate facility cache")
		}

		if err := a.cache.DeletePattern(bgCtx, "facilities:list:*"); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate facilities list cache")
		}
	}()
}
