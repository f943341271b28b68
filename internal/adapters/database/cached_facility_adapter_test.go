package database_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/zatekoja/carecapacity/internal/adapters/database"
	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// stubFacilityRepo serves one facility and counts database reads
type stubFacilityRepo struct {
	facility *entities.Facility
	getCalls atomic.Int64
}

func (r *stubFacilityRepo) Create(ctx context.Context, facility *entities.Facility) error { return nil }

func (r *stubFacilityRepo) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	r.getCalls.Add(1)
	if r.facility == nil || r.facility.ID != id {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	return r.facility, nil
}

func (r *stubFacilityRepo) Update(ctx context.Context, facility *entities.Facility) error { return nil }

func (r *stubFacilityRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *stubFacilityRepo) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	if r.facility == nil {
		return []*entities.Facility{}, nil
	}
	return []*entities.Facility{r.facility}, nil
}

// stubCache is a minimal in-memory CacheProvider
type stubCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if value, ok := c.data[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *stubCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok, nil
}

func newAdapterTestMetrics(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)
	return metrics, reader
}

func cacheCounter(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestCachedFacilityAdapter_GetByIDCountsHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	repo := &stubFacilityRepo{facility: &entities.Facility{
		ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true,
	}}
	cache := newStubCache()
	metrics, reader := newAdapterTestMetrics(t)

	adapter := database.NewCachedFacilityAdapter(repo, cache, metrics)

	// First read misses and falls through to the database
	facility, err := adapter.GetByID(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "fac-1", facility.ID)
	assert.Equal(t, int64(1), repo.getCalls.Load())
	assert.Equal(t, int64(1), cacheCounter(t, reader, "cache.miss.count"))
	assert.Equal(t, int64(0), cacheCounter(t, reader, "cache.hit.count"))

	// The cache write is asynchronous
	require.Eventually(t, func() bool {
		ok, _ := cache.Exists(ctx, "facility:fac-1")
		return ok
	}, time.Second, 10*time.Millisecond)

	// Second read is served from cache without touching the database
	facility, err = adapter.GetByID(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "fac-1", facility.ID)
	assert.Equal(t, int64(1), repo.getCalls.Load())
	assert.Equal(t, int64(1), cacheCounter(t, reader, "cache.hit.count"))
}

func TestCachedFacilityAdapter_NilMetricsStillServes(t *testing.T) {
	ctx := context.Background()
	repo := &stubFacilityRepo{facility: &entities.Facility{
		ID: "fac-1", Name: "General Hospital", Location: "Lagos", TotalBeds: 100, IsActive: true,
	}}

	adapter := database.NewCachedFacilityAdapter(repo, newStubCache(), nil)

	facility, err := adapter.GetByID(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, "fac-1", facility.ID)
}
