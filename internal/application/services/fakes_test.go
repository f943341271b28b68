package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// fakeFacilityRepo is an in-memory FacilityRepository
type fakeFacilityRepo struct {
	mu         sync.RWMutex
	facilities map[string]*entities.Facility
}

func newFakeFacilityRepo(facilities ...*entities.Facility) *fakeFacilityRepo {
	repo := &fakeFacilityRepo{facilities: make(map[string]*entities.Facility)}
	for _, f := range facilities {
		repo.facilities[f.ID] = f
	}
	return repo
}

func (r *fakeFacilityRepo) Create(ctx context.Context, facility *entities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facilities[facility.ID] = facility
	return nil
}

func (r *fakeFacilityRepo) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	facility, ok := r.facilities[id]
	if !ok || !facility.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	return facility, nil
}

func (r *fakeFacilityRepo) Update(ctx context.Context, facility *entities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.facilities[facility.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", facility.ID))
	}
	r.facilities[facility.ID] = facility
	return nil
}

func (r *fakeFacilityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	facility, ok := r.facilities[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %s not found", id))
	}
	facility.IsActive = false
	return nil
}

func (r *fakeFacilityRepo) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []*entities.Facility{}
	for _, facility := range r.facilities {
		if filter.Location != "" && !strings.Contains(strings.ToLower(facility.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.ExcludeID != "" && facility.ID == filter.ExcludeID {
			continue
		}
		if filter.IsActive != nil && facility.IsActive != *filter.IsActive {
			continue
		}
		results = append(results, facility)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// fakeRecordRepo is an in-memory RecordRepository keyed by (facility, date)
type fakeRecordRepo struct {
	mu        sync.RWMutex
	records   map[string][]*entities.DailyRecord
	listCalls int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string][]*entities.DailyRecord)}
}

func (r *fakeRecordRepo) Upsert(ctx context.Context, record *entities.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.records[record.FacilityID]
	for i, stored := range existing {
		if stored.Date.Equal(record.Date) {
			existing[i] = record
			return nil
		}
	}
	r.records[record.FacilityID] = append(existing, record)
	return nil
}

func (r *fakeRecordRepo) ListByFacility(ctx context.Context, facilityID string, from, to time.Time) ([]*entities.DailyRecord, error) {
	r.mu.Lock()
	r.listCalls++
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := []*entities.DailyRecord{}
	for _, record := range r.records[facilityID] {
		if !from.IsZero() && record.Date.Before(from) {
			continue
		}
		if !to.IsZero() && record.Date.After(to) {
			continue
		}
		results = append(results, record)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date.Before(results[j].Date) })
	return results, nil
}

func (r *fakeRecordRepo) Latest(ctx context.Context, facilityID string) (*entities.DailyRecord, error) {
	records, _ := r.ListByFacility(ctx, facilityID, time.Time{}, time.Time{})
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no records found for facility %s", facilityID))
	}
	return records[len(records)-1], nil
}

func (r *fakeRecordRepo) CountByFacility(ctx context.Context, facilityID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records[facilityID]), nil
}

func (r *fakeRecordRepo) ListCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listCalls
}

// fakeCache is an in-memory CacheProvider with glob-prefix DeletePattern
type fakeCache struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if value, ok := c.data[key]; ok {
		return value, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			c.deleted = append(c.deleted, key)
		}
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	return keys
}

func (c *fakeCache) DeletedCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.deleted)
}

// fakeEventBus collects published events and feeds subscribers
type fakeEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.FacilityEvent
	published   []*entities.FacilityEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{subscribers: make(map[string][]chan *entities.FacilityEvent)}
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.FacilityEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FacilityEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.FacilityEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		close(ch)
	}
	delete(b.subscribers, channel)
	return nil
}

func (b *fakeEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, channels := range b.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	b.subscribers = make(map[string][]chan *entities.FacilityEvent)
	return nil
}

func (b *fakeEventBus) Published() []*entities.FacilityEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entities.FacilityEvent{}, b.published...)
}

func (b *fakeEventBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// testFacility builds an active facility with the given capacity
func testFacility(id, name, location string, totalBeds int) *entities.Facility {
	now := time.Now().UTC()
	return &entities.Facility{
		ID:        id,
		Name:      name,
		Location:  location,
		TotalBeds: totalBeds,
		ICUBeds:   totalBeds / 10,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// seedHistory writes n daily records ending yesterday, occupancy following
// base + trend*day
func seedHistory(repo *fakeRecordRepo, facilityID string, n int, base, trend float64) {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		date := end.AddDate(0, 0, -(n - 1 - i))
		occupied := int(base + trend*float64(i))
		if occupied < 0 {
			occupied = 0
		}
		record := entities.NewDailyRecord(facilityID, date)
		record.OccupiedBeds = occupied
		record.Admissions = 5
		record.Discharges = 4
		_ = repo.Upsert(context.Background(), record)
	}
}
