package entities

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

// Facility represents a hospital or care site with a fixed bed capacity
type Facility struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	TotalBeds int       `json:"total_beds" db:"total_beds"`
	ICUBeds   int       `json:"icu_beds" db:"icu_beds"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewFacility creates a facility with a generated ID and timestamps
func NewFacility(name, location string, totalBeds, icuBeds int) *Facility {
	now := time.Now().UTC()
	return &Facility{
		ID:        uuid.NewString(),
		Name:      name,
		Location:  location,
		TotalBeds: totalBeds,
		ICUBeds:   icuBeds,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the facility capacity invariants
func (f *Facility) Validate() error {
	if f.Name == "" {
		return apperrors.NewValidationError("facility name is required")
	}
	if f.TotalBeds <= 0 {
		return apperrors.NewValidationError("total_beds must be a positive integer")
	}
	if f.ICUBeds < 0 || f.ICUBeds > f.TotalBeds {
		return apperrors.NewValidationError("icu_beds must be between 0 and total_beds")
	}
	return nil
}
