package service

import (
	"context"

	"github.com/alexivanou/cityinfo-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListCities(ctx context.Context, filter model.CityFilter) (*model.CityPage, error)
	GetCity(ctx context.Context, cityID int) (*model.CityWithoutPointsOfInterestDto, error)
	GetCityWithPointsOfInterest(ctx context.Context, cityID int) (*model.CityDto, error)

	ListPointsOfInterest(ctx context.Context, cityID int) ([]model.PointOfInterestDto, error)
	GetPointOfInterest(ctx context.Context, cityID, poiID int) (*model.PointOfInterestDto, error)
	CreatePointOfInterest(ctx context.Context, cityID int, payload model.PointOfInterestForCreationDto) (*model.PointOfInterestDto, error)
	UpdatePointOfInterest(ctx context.Context, cityID, poiID int, payload model.PointOfInterestForUpdateDto) error
	PatchPointOfInterest(ctx context.Context, cityID, poiID int, patchDocument []byte) error
	DeletePointOfInterest(ctx context.Context, cityID, poiID int) error
}
