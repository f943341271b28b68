package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// RecordRepository defines the interface for daily record operations.
// The store enforces at most one record per (facility, date); Upsert
// overwrites an existing row for the same key.
type RecordRepository interface {
	// Upsert inserts the record or overwrites the row with the same
	// (facility_id, date) key
	Upsert(ctx context.Context, record *entities.DailyRecord) error

	// ListByFacility retrieves records for a facility ordered ascending by
	// date. Zero from/to mean an unbounded range on that side.
	ListByFacility(ctx context.Context, facilityID string, from, to time.Time) ([]*entities.DailyRecord, error)

	// Latest retrieves the most recent record for a facility
	Latest(ctx context.Context, facilityID string) (*entities.DailyRecord, error)

	// CountByFacility returns how many records exist for a facility
	CountByFacility(ctx context.Context, facilityID string) (int, error)
}
