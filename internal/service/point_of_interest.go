package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexivanou/cityinfo-api/internal/model"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"github.com/alexivanou/cityinfo-api/internal/validation"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"
)

const poiDeletedSubject = "POI Deleted"

// ListPointsOfInterest returns every point of interest of a city
func (s *Service) ListPointsOfInterest(ctx context.Context, cityID int) ([]model.PointOfInterestDto, error) {
	if err := s.requireCity(ctx, cityID); err != nil {
		s.logger.Info("City not found when accessing points of interest", zap.Int("city_id", cityID))
		return nil, err
	}

	pois, err := s.repo.GetPointsOfInterestForCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get points of interest: %w", err)
	}
	return model.ToPointOfInterestDtos(pois), nil
}

// GetPointOfInterest returns a point of interest only if it belongs to the city
func (s *Service) GetPointOfInterest(ctx context.Context, cityID, poiID int) (*model.PointOfInterestDto, error) {
	poi, err := s.loadPointOfInterest(ctx, cityID, poiID)
	if err != nil {
		return nil, err
	}
	dto := model.ToPointOfInterestDto(*poi)
	return &dto, nil
}

// CreatePointOfInterest validates the payload and stores a new point of interest
func (s *Service) CreatePointOfInterest(ctx context.Context, cityID int, payload model.PointOfInterestForCreationDto) (*model.PointOfInterestDto, error) {
	if fields := validation.Validate(payload); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := s.requireCity(ctx, cityID); err != nil {
		return nil, err
	}

	poi := model.NewPointOfInterest(cityID, payload)
	uow := s.repo.NewUnitOfWork()
	uow.AddPointOfInterestForCity(cityID, &poi)
	if err := uow.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to create point of interest: %w", err)
	}

	dto := model.ToPointOfInterestDto(poi)
	return &dto, nil
}

// UpdatePointOfInterest fully replaces the mutable fields of a point of interest
func (s *Service) UpdatePointOfInterest(ctx context.Context, cityID, poiID int, payload model.PointOfInterestForUpdateDto) error {
	if fields := validation.Validate(payload); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	poi, err := s.loadPointOfInterest(ctx, cityID, poiID)
	if err != nil {
		return err
	}

	model.ApplyUpdate(payload, poi)
	return s.savePointOfInterest(ctx, poi)
}

// PatchPointOfInterest applies an RFC 6902 document to the update view of a
// point of interest. The stored record is only touched if the patched view is valid.
func (s *Service) PatchPointOfInterest(ctx context.Context, cityID, poiID int, patchDocument []byte) error {
	patch, err := jsonpatch.DecodePatch(patchDocument)
	if err != nil {
		return &PatchError{Err: err}
	}

	poi, err := s.loadPointOfInterest(ctx, cityID, poiID)
	if err != nil {
		return err
	}

	patched, err := applyPatch(patch, model.ToPointOfInterestForUpdateDto(*poi))
	if err != nil {
		return err
	}
	if fields := validation.Validate(patched); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	model.ApplyUpdate(patched, poi)
	return s.savePointOfInterest(ctx, poi)
}

func applyPatch(patch jsonpatch.Patch, target model.PointOfInterestForUpdateDto) (model.PointOfInterestForUpdateDto, error) {
	var patched model.PointOfInterestForUpdateDto

	doc, err := json.Marshal(target)
	if err != nil {
		return patched, fmt.Errorf("failed to encode point of interest: %w", err)
	}
	modified, err := patch.Apply(doc)
	if err != nil {
		return patched, &PatchError{Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(modified))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patched); err != nil {
		return patched, &PatchError{Err: err}
	}
	return patched, nil
}

// DeletePointOfInterest removes a point of interest and notifies the mailer
func (s *Service) DeletePointOfInterest(ctx context.Context, cityID, poiID int) error {
	poi, err := s.loadPointOfInterest(ctx, cityID, poiID)
	if err != nil {
		return err
	}

	uow := s.repo.NewUnitOfWork()
	uow.DeletePointOfInterest(poi)
	if err := uow.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPointOfInterestNotFound
		}
		return fmt.Errorf("failed to delete point of interest: %w", err)
	}

	s.mailer.Send(poiDeletedSubject,
		fmt.Sprintf("Deleted POI with id %d, from City with id %d", poiID, cityID))
	return nil
}

func (s *Service) loadPointOfInterest(ctx context.Context, cityID, poiID int) (*model.PointOfInterest, error) {
	if err := s.requireCity(ctx, cityID); err != nil {
		return nil, err
	}
	poi, err := s.repo.GetPointOfInterestForCity(ctx, cityID, poiID)
	if err != nil {
		return nil, fmt.Errorf("failed to get point of interest: %w", err)
	}
	if poi == nil {
		return nil, ErrPointOfInterestNotFound
	}
	return poi, nil
}

func (s *Service) savePointOfInterest(ctx context.Context, poi *model.PointOfInterest) error {
	uow := s.repo.NewUnitOfWork()
	uow.UpdatePointOfInterest(poi)
	if err := uow.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPointOfInterestNotFound
		}
		return fmt.Errorf("failed to update point of interest: %w", err)
	}
	return nil
}
