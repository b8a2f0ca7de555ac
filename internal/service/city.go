package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/cityinfo-api/internal/model"
)

// ListCities returns one page of cities matching the filter
func (s *Service) ListCities(ctx context.Context, filter model.CityFilter) (*model.CityPage, error) {
	filter = filter.Normalize()

	cities, total, err := s.repo.GetCities(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	dtos := make([]model.CityWithoutPointsOfInterestDto, 0, len(cities))
	for _, c := range cities {
		dtos = append(dtos, model.ToCityWithoutPointsOfInterestDto(c))
	}

	return &model.CityPage{
		Cities:     dtos,
		Pagination: model.NewPaginationMetadata(total, filter.PageSize, filter.PageNumber),
	}, nil
}

// GetCity retrieves the summary view of a city
func (s *Service) GetCity(ctx context.Context, cityID int) (*model.CityWithoutPointsOfInterestDto, error) {
	city, err := s.repo.GetCity(ctx, cityID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, ErrCityNotFound
	}
	dto := model.ToCityWithoutPointsOfInterestDto(*city)
	return &dto, nil
}

// GetCityWithPointsOfInterest retrieves a city together with its points of interest
func (s *Service) GetCityWithPointsOfInterest(ctx context.Context, cityID int) (*model.CityDto, error) {
	city, err := s.repo.GetCity(ctx, cityID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, ErrCityNotFound
	}
	dto := model.ToCityDto(*city)
	return &dto, nil
}

func (s *Service) requireCity(ctx context.Context, cityID int) error {
	exists, err := s.repo.CityExists(ctx, cityID)
	if err != nil {
		return fmt.Errorf("failed to check city: %w", err)
	}
	if !exists {
		return ErrCityNotFound
	}
	return nil
}
