package repository

import (
	"context"

	"github.com/alexivanou/cityinfo-api/internal/model"
)

type changeKind int

const (
	changeAddCity changeKind = iota
	changeAddPointOfInterest
	changeUpdatePointOfInterest
	changeDeletePointOfInterest
)

type change struct {
	kind   changeKind
	cityID int
	city   *model.City
	poi    *model.PointOfInterest
}

// changeApplier persists a batch of changes atomically.
type changeApplier interface {
	applyChanges(ctx context.Context, changes []change) error
}

type unitOfWork struct {
	store   changeApplier
	pending []change
}

func newUnitOfWork(store changeApplier) *unitOfWork {
	return &unitOfWork{store: store}
}

func (u *unitOfWork) AddCity(city *model.City) {
	u.pending = append(u.pending, change{kind: changeAddCity, city: city})
}

func (u *unitOfWork) AddPointOfInterestForCity(cityID int, poi *model.PointOfInterest) {
	poi.CityID = cityID
	u.pending = append(u.pending, change{kind: changeAddPointOfInterest, cityID: cityID, poi: poi})
}

func (u *unitOfWork) UpdatePointOfInterest(poi *model.PointOfInterest) {
	u.pending = append(u.pending, change{kind: changeUpdatePointOfInterest, cityID: poi.CityID, poi: poi})
}

func (u *unitOfWork) DeletePointOfInterest(poi *model.PointOfInterest) {
	u.pending = append(u.pending, change{kind: changeDeletePointOfInterest, cityID: poi.CityID, poi: poi})
}

func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if len(u.pending) == 0 {
		return nil
	}
	if err := u.store.applyChanges(ctx, u.pending); err != nil {
		return err
	}
	u.pending = nil
	return nil
}
