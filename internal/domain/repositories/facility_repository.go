package repositories

import (
	"context"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
)

// FacilityRepository defines the interface for facility data operations
type FacilityRepository interface {
	// Create creates a new facility
	Create(ctx context.Context, facility *entities.Facility) error

	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)

	// Update updates a facility
	Update(ctx context.Context, facility *entities.Facility) error

	// Delete deactivates a facility (soft delete)
	Delete(ctx context.Context, id string) error

	// List retrieves facilities with filters
	List(ctx context.Context, filter FacilityFilter) ([]*entities.Facility, error)
}

// FacilityFilter defines filters for listing facilities
type FacilityFilter struct {
	// Location matches facilities whose location contains the given string,
	// case-insensitively ("Lagos" matches "Ikeja, Lagos").
	Location string

	// ExcludeID omits a facility from the result, used when building an
	// alternates pool around a primary facility.
	ExcludeID string

	IsActive *bool
	Limit    int
	Offset   int
}
