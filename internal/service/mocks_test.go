package service

import (
	"context"

	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockRepository implements repository.CityInfoRepository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CityExists(ctx context.Context, cityID int) (bool, error) {
	args := m.Called(ctx, cityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetCities(ctx context.Context, filter model.CityFilter) ([]model.City, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.City), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*model.City, error) {
	args := m.Called(ctx, cityID, includePointsOfInterest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockRepository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]model.PointOfInterest, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PointOfInterest), args.Error(1)
}

func (m *MockRepository) GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*model.PointOfInterest, error) {
	args := m.Called(ctx, cityID, poiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointOfInterest), args.Error(1)
}

func (m *MockRepository) NewUnitOfWork() repository.UnitOfWork {
	args := m.Called()
	return args.Get(0).(repository.UnitOfWork)
}

// MockUnitOfWork implements repository.UnitOfWork interface
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) AddCity(city *model.City) {
	m.Called(city)
}

func (m *MockUnitOfWork) AddPointOfInterestForCity(cityID int, poi *model.PointOfInterest) {
	m.Called(cityID, poi)
}

func (m *MockUnitOfWork) UpdatePointOfInterest(poi *model.PointOfInterest) {
	m.Called(poi)
}

func (m *MockUnitOfWork) DeletePointOfInterest(poi *model.PointOfInterest) {
	m.Called(poi)
}

func (m *MockUnitOfWork) SaveChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMailer implements mail.Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(subject, message string) {
	m.Called(subject, message)
}
