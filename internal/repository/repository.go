package repository

import (
	"context"
	"errors"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by SaveChanges when a staged change targets a
// city or point of interest that no longer exists.
var ErrNotFound = errors.New("record not found")

// CityInfoRepository defines read access to cities and their points of interest.
// Lookups return nil without error when the record does not exist.
type CityInfoRepository interface {
	CityExists(ctx context.Context, cityID int) (bool, error)
	// GetCities returns one page of matching cities ordered by name and the
	// total number of matches before paging.
	GetCities(ctx context.Context, filter model.CityFilter) ([]model.City, int, error)
	GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*model.City, error)
	GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]model.PointOfInterest, error)
	GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*model.PointOfInterest, error)
	// NewUnitOfWork starts a batch of writes committed together by SaveChanges.
	NewUnitOfWork() UnitOfWork
}

// UnitOfWork stages writes. Nothing is persisted until SaveChanges succeeds,
// at which point generated IDs are written back onto the staged entities.
type UnitOfWork interface {
	AddCity(city *model.City)
	AddPointOfInterestForCity(cityID int, poi *model.PointOfInterest)
	UpdatePointOfInterest(poi *model.PointOfInterest)
	DeletePointOfInterest(poi *model.PointOfInterest)
	SaveChanges(ctx context.Context) error
}

// NewRepository creates the repository implementation for the DB type.
// db is ignored for the memory store.
func NewRepository(db *sqlx.DB, dbType config.DBType) CityInfoRepository {
	switch dbType {
	case config.DBTypePostgreSQL:
		return newSQLRepository(db, postgresDialect{})
	case config.DBTypeSQLite:
		return newSQLRepository(db, sqliteDialect{})
	}
	return NewMemoryRepository()
}
