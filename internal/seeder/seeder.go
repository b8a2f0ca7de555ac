package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"go.uber.org/zap"
)

func describe(s string) *string { return &s }

// DefaultCities is the dataset used when no seed files are present
func DefaultCities() []model.City {
	return []model.City{
		{
			Name:        "New York City",
			Description: describe("The one with that big park."),
			PointsOfInterest: []model.PointOfInterest{
				{Name: "Central Park", Description: describe("The most visited urban park in the United States.")},
				{Name: "Empire State Building", Description: describe("A 102-story skyscraper located in Midtown Manhattan.")},
			},
		},
		{
			Name:        "Antwerp",
			Description: describe("The one with the cathedral that was never really finished."),
			PointsOfInterest: []model.PointOfInterest{
				{Name: "Cathedral of Our Lady", Description: describe("A Gothic style cathedral, conceived by architects Jan and Pieter Appelmans.")},
				{Name: "Antwerp Central Station", Description: describe("The the finest example of railway architecture in Belgium.")},
			},
		},
		{
			Name:        "Paris",
			Description: describe("The one with that big tower."),
			PointsOfInterest: []model.PointOfInterest{
				{Name: "Eiffel Tower", Description: describe("A wrought iron lattice tower on the Champ de Mars, named after engineer Gustave Eiffel.")},
				{Name: "The Louvre", Description: describe("The world's largest museum.")},
			},
		},
	}
}

// Load reads seed data from dataDir, falling back to DefaultCities when the
// directory has no seed files.
func Load(dataDir string) ([]model.City, error) {
	cities, err := NewParser(dataDir).ParseCities()
	if errors.Is(err, ErrNoData) {
		return DefaultCities(), nil
	}
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// Seed inserts cities and their points of interest in one unit of work
func Seed(ctx context.Context, repo repository.CityInfoRepository, cities []model.City) error {
	uow := repo.NewUnitOfWork()
	for i := range cities {
		uow.AddCity(&cities[i])
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("failed to insert cities: %w", err)
	}
	return nil
}

// SeedIfEmpty seeds the store from dataDir only when it holds no cities.
// It reports whether anything was inserted.
func SeedIfEmpty(ctx context.Context, repo repository.CityInfoRepository, dataDir string, logger *zap.Logger) (bool, error) {
	_, total, err := repo.GetCities(ctx, model.CityFilter{}.Normalize())
	if err != nil {
		return false, fmt.Errorf("failed to check for existing cities: %w", err)
	}
	if total > 0 {
		logger.Debug("Store already has cities, skipping seed", zap.Int("cities", total))
		return false, nil
	}

	cities, err := Load(dataDir)
	if err != nil {
		return false, err
	}

	logger.Info("Store is empty, seeding data...", zap.String("data_dir", dataDir))
	if err := Seed(ctx, repo, cities); err != nil {
		return false, err
	}

	pois := 0
	for _, c := range cities {
		pois += len(c.PointsOfInterest)
	}
	logger.Info("Seeded data",
		zap.Int("cities", len(cities)),
		zap.Int("points_of_interest", pois),
	)
	return true, nil
}
