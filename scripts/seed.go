package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/zatekoja/carecapacity/internal/adapters/database"
	"github.com/zatekoja/carecapacity/internal/domain/entities"
	"github.com/zatekoja/carecapacity/internal/domain/repositories"
	"github.com/zatekoja/carecapacity/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/carecapacity/pkg/config"
)

const historyDays = 60

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	facilityRepo := database.NewFacilityAdapter(pgClient)
	recordRepo := database.NewRecordAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				daily_records,
				facilities
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// 1. Seed facilities
	facilities := []*entities.Facility{
		entities.NewFacility("St. Mary's General Hospital", "New York, NY", 250, 30),
		entities.NewFacility("City Medical Center", "Los Angeles, CA", 180, 25),
		entities.NewFacility("Regional Health Institute", "Chicago, IL", 320, 40),
	}

	for _, facility := range facilities {
		if err := facilityRepo.Create(ctx, facility); err != nil {
			log.Printf("Failed to create facility %s: %v", facility.Name, err)
			continue
		}
		log.Printf("Created facility: %s (ID: %s)", facility.Name, facility.ID)
	}

	// 2. Seed daily records with a trend, weekly seasonality and noise
	log.Printf("Generating %d days of records per facility...", historyDays)
	for _, facility := range facilities {
		if err := seedRecords(ctx, recordRepo, facility); err != nil {
			log.Printf("Failed to seed records for %s: %v", facility.Name, err)
			continue
		}
		log.Printf("Seeded records for %s", facility.Name)
	}

	log.Println("Data generation complete")
}

func seedRecords(ctx context.Context, recordRepo repositories.RecordRepository, facility *entities.Facility) error {
	baseOccupancy := int(float64(facility.TotalBeds) * (0.70 + rand.Float64()*0.15))

	trendDirection := 1
	if rand.Intn(2) == 0 {
		trendDirection = -1
	}
	trendMagnitude := 0.05 + rand.Float64()*0.10

	startDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -historyDays)
	previousOccupied := 0

	for day := 0; day < historyDays; day++ {
		currentDate := startDate.AddDate(0, 0, day)

		trendEffect := int(float64(baseOccupancy) * trendMagnitude * float64(trendDirection) * float64(day) / float64(historyDays))

		// Weekends run lighter than weekdays
		var seasonalEffect int
		if wd := currentDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			seasonalEffect = -15 + rand.Intn(11)
		} else {
			seasonalEffect = -5 + rand.Intn(16)
		}

		randomVariation := -8 + rand.Intn(21)

		occupied := baseOccupancy + trendEffect + seasonalEffect + randomVariation
		occupied = max(facility.TotalBeds/2, min(occupied, facility.TotalBeds-5))

		var admissions, discharges int
		if day > 0 {
			change := occupied - previousOccupied
			admissions = max(5, occupied*15/100+max(0, change)+rand.Intn(9)-3)
			discharges = max(0, admissions-change+rand.Intn(5)-2)
		} else {
			admissions = 15 + rand.Intn(16)
			discharges = 10 + rand.Intn(16)
		}

		record := entities.NewDailyRecord(facility.ID, currentDate)
		record.OccupiedBeds = occupied
		record.Admissions = admissions
		record.Discharges = discharges
		record.ICUOccupied = int(float64(facility.ICUBeds) * (0.60 + rand.Float64()*0.20))
		record.EmergencyCases = admissions * (5 + rand.Intn(11)) / 100

		if err := recordRepo.Upsert(ctx, record); err != nil {
			return err
		}

		previousOccupied = occupied
	}
	return nil
}
