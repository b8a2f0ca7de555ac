package service

import (
	"github.com/alexivanou/cityinfo-api/internal/mail"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"go.uber.org/zap"
)

// Service provides business logic for the API
type Service struct {
	repo   repository.CityInfoRepository
	mailer mail.Mailer
	logger *zap.Logger
}

// NewService creates a new service instance
func NewService(
	repo repository.CityInfoRepository,
	mailer mail.Mailer,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}
