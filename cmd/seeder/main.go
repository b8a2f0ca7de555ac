package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/alexivanou/cityinfo-api/internal/database"
	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"github.com/alexivanou/cityinfo-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	force := flag.Bool("force", false, "Insert the data even when cities already exist")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.DB.IsMemory() {
		logger.Fatal("Seeding the memory store from a separate process has no effect")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB.Type); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repo := repository.NewRepository(db, cfg.DB.Type)

	if !*force {
		if _, err := seeder.SeedIfEmpty(ctx, repo, cfg.Seeder.DataDir, logger); err != nil {
			logger.Fatal("Failed to seed data", zap.Error(err))
		}
		return
	}

	logger.Info("Loading seed data...", zap.String("data_dir", cfg.Seeder.DataDir))
	cities, err := seeder.Load(cfg.Seeder.DataDir)
	if err != nil {
		logger.Fatal("Failed to load seed data", zap.Error(err))
	}

	if err := seeder.Seed(ctx, repo, cities); err != nil {
		logger.Fatal("Failed to insert seed data", zap.Error(err))
	}

	_, total, err := repo.GetCities(ctx, model.CityFilter{}.Normalize())
	if err != nil {
		logger.Fatal("Failed to count cities", zap.Error(err))
	}
	logger.Info("Data import completed successfully!",
		zap.Int("inserted", len(cities)),
		zap.Int("total_cities", total),
	)
}
