package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alexivanou/cityinfo-api/internal/model"
)

// --- In-memory Implementation ---

// memoryRepository keeps all state in maps guarded by a single mutex.
// Reads return copies so callers can never mutate stored records directly.
type memoryRepository struct {
	mu         sync.RWMutex
	cities     map[int]model.City
	pois       map[int]model.PointOfInterest
	lastCityID int
	lastPOIID  int
}

// NewMemoryRepository creates an empty in-process store.
func NewMemoryRepository() CityInfoRepository {
	return &memoryRepository{
		cities: make(map[int]model.City),
		pois:   make(map[int]model.PointOfInterest),
	}
}

func (r *memoryRepository) CityExists(ctx context.Context, cityID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cities[cityID]
	return ok, nil
}

func (r *memoryRepository) GetCities(ctx context.Context, filter model.CityFilter) ([]model.City, int, error) {
	filter = filter.Normalize()
	name := strings.TrimSpace(filter.Name)
	search := strings.ToLower(strings.TrimSpace(filter.SearchQuery))

	r.mu.RLock()
	matches := make([]model.City, 0, len(r.cities))
	for _, city := range r.cities {
		if name != "" && city.Name != name {
			continue
		}
		if search != "" && !matchesSearch(city, search) {
			continue
		}
		matches = append(matches, city)
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)
	start := filter.Offset()
	if start >= total {
		return []model.City{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matches[start:end], total, nil
}

func matchesSearch(city model.City, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(city.Name), lowerQuery) {
		return true
	}
	return city.Description != nil && strings.Contains(strings.ToLower(*city.Description), lowerQuery)
}

func (r *memoryRepository) GetCity(ctx context.Context, cityID int, includePointsOfInterest bool) (*model.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	city, ok := r.cities[cityID]
	if !ok {
		return nil, nil
	}
	if includePointsOfInterest {
		city.PointsOfInterest = r.pointsOfInterestLocked(cityID)
	}
	return &city, nil
}

func (r *memoryRepository) GetPointsOfInterestForCity(ctx context.Context, cityID int) ([]model.PointOfInterest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pointsOfInterestLocked(cityID), nil
}

func (r *memoryRepository) pointsOfInterestLocked(cityID int) []model.PointOfInterest {
	result := []model.PointOfInterest{}
	for _, poi := range r.pois {
		if poi.CityID == cityID {
			result = append(result, poi)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *memoryRepository) GetPointOfInterestForCity(ctx context.Context, cityID, poiID int) (*model.PointOfInterest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	poi, ok := r.pois[poiID]
	if !ok || poi.CityID != cityID {
		return nil, nil
	}
	return &poi, nil
}

func (r *memoryRepository) NewUnitOfWork() UnitOfWork {
	return newUnitOfWork(r)
}

// applyChanges checks every change against current state before touching
// anything, so a batch either applies completely or not at all.
func (r *memoryRepository) applyChanges(ctx context.Context, changes []change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := make(map[int]bool)
	for _, c := range changes {
		switch c.kind {
		case changeAddPointOfInterest:
			if _, ok := r.cities[c.cityID]; !ok {
				return fmt.Errorf("city %d: %w", c.cityID, ErrNotFound)
			}
		case changeUpdatePointOfInterest, changeDeletePointOfInterest:
			stored, ok := r.pois[c.poi.ID]
			if !ok || stored.CityID != c.cityID || deleted[c.poi.ID] {
				return fmt.Errorf("point of interest %d: %w", c.poi.ID, ErrNotFound)
			}
			if c.kind == changeDeletePointOfInterest {
				deleted[c.poi.ID] = true
			}
		}
	}

	for _, c := range changes {
		switch c.kind {
		case changeAddCity:
			r.lastCityID++
			c.city.ID = r.lastCityID
			stored := *c.city
			stored.PointsOfInterest = nil
			r.cities[stored.ID] = stored
			for i := range c.city.PointsOfInterest {
				c.city.PointsOfInterest[i].CityID = stored.ID
				r.insertPointOfInterestLocked(&c.city.PointsOfInterest[i])
			}
		case changeAddPointOfInterest:
			r.insertPointOfInterestLocked(c.poi)
		case changeUpdatePointOfInterest:
			r.pois[c.poi.ID] = *c.poi
		case changeDeletePointOfInterest:
			delete(r.pois, c.poi.ID)
		}
	}
	return nil
}

// insertPointOfInterestLocked assigns the next ID from a counter that only
// grows, so IDs are never reused after deletes.
func (r *memoryRepository) insertPointOfInterestLocked(poi *model.PointOfInterest) {
	r.lastPOIID++
	poi.ID = r.lastPOIID
	r.pois[poi.ID] = *poi
}
