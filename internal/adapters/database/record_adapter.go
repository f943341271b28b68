package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/carecapacity/pkg/errors"
)

var recordColumns = []interface{}{
	"id", "facility_id", "date", "admissions", "discharges",
	"occupied_beds", "icu_occupied", "emergency_cases", "created_at",
}

// RecordAdapter implements the RecordRepository interface
type RecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRecordAdapter creates a new daily record adapter
func NewRecordAdapter(client *postgres.Client) repositories.RecordRepository {
	return &RecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert inserts a daily record or overwrites the row with the same
// (facility_id, date) key
func (a *RecordAdapter) Upsert(ctx context.Context, record *entities.DailyRecord) error {
	ins := goqu.Record{
		"id":              record.ID,
		"facility_id":     record.FacilityID,
		"date":            record.Date,
		"admissions":      record.Admissions,
		"discharges":      record.Discharges,
		"occupied_beds":   record.OccupiedBeds,
		"icu_occupied":    record.ICUOccupied,
		"emergency_cases": record.EmergencyCases,
		"created_at":      record.CreatedAt,
	}

	query, args, err := a.db.Insert("daily_records").
		Rows(ins).
		OnConflict(goqu.DoUpdate("facility_id, date", goqu.Record{
			"admissions":      record.Admissions,
			"discharges":      record.Discharges,
			"occupied_beds":   record.OccupiedBeds,
			"icu_occupied":    record.ICUOccupied,
			"emergency_cases": record.EmergencyCases,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert daily record", err)
	}

	return nil
}

// ListByFacility retrieves records for a facility ordered ascending by date.
// Zero from/to mean an unbounded range on that side.
func (a *RecordAdapter) ListByFacility(ctx context.Context, facilityID string, from, to time.Time) ([]*entities.DailyRecord, error) {
	ds := a.db.Select(recordColumns...).
		From("daily_records").
		Where(goqu.Ex{"facility_id": facilityID})

	if !from.IsZero() {
		ds = ds.Where(goqu.C("date").Gte(from))
	}
	if !to.IsZero() {
		ds = ds.Where(goqu.C("date").Lte(to))
	}

	query, args, err := ds.Order(goqu.I("date").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list daily records", err)
	}
	defer rows.Close()

	records := []*entities.DailyRecord{}
	for rows.Next() {
		record := &entities.DailyRecord{}
		err := rows.Scan(
			&record.ID,
			&record.FacilityID,
			&record.Date,
			&record.Admissions,
			&record.Discharges,
			&record.OccupiedBeds,
			&record.ICUOccupied,
			&record.EmergencyCases,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan daily record", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating daily records", err)
	}

	return records, nil
}

// Latest retrieves the most recent record for a facility
func (a *RecordAdapter) Latest(ctx context.Context, facilityID string) (*entities.DailyRecord, error) {
	query, args, err := a.db.Select(recordColumns...).
		From("daily_records").
		Where(goqu.Ex{"facility_id": facilityID}).
		Order(goqu.I("date").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	record := &entities.DailyRecord{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&record.ID,
		&record.FacilityID,
		&record.Date,
		&record.Admissions,
		&record.Discharges,
		&record.OccupiedBeds,
		&record.ICUOccupied,
		&record.EmergencyCases,
		&record.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no records found for facility %s", facilityID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get latest daily record", err)
	}

	return record, nil
}

// CountByFacility returns how many records exist for a facility
func (a *RecordAdapter) CountByFacility(ctx context.Context, facilityID string) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("daily_records").
		Where(goqu.Ex{"facility_id": facilityID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count daily records", err)
	}

	return count, nil
}
