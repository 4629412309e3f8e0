// Package season owns the registration seasons: the pricing/capacity tiers
// and the allocation search across them.
package season

import (
	"context"
	"sort"
	"sync"

	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// InMemory is the season ledger. Season ids are assigned monotonically from 1
// and never reused.
type InMemory struct {
	mu      sync.RWMutex
	seasons map[id.SeasonID]models.Season
	nextID  id.SeasonID
}

func NewInMemory() *InMemory {
	return &InMemory{
		seasons: make(map[id.SeasonID]models.Season),
		nextID:  1,
	}
}

// Create installs a validated season as Active and assigns its id.
// Returns sentinel.ErrInvalidState when another season is already Active;
// at most one season may be Active at any time.
func (s *InMemory) Create(_ context.Context, season models.Season) (id.SeasonID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.seasons {
		if existing.Status == models.SeasonStatusActive {
			return 0, sentinel.ErrInvalidState
		}
	}
	season.ID = s.nextID
	s.nextID++
	s.seasons[season.ID] = season
	return season.ID, nil
}

// FindApplicable selects the cheapest Active season whose length band matches
// and which still has capacity. Price ties break to the lowest season id so
// the result never depends on map iteration order.
func (s *InMemory) FindApplicable(_ context.Context, nameLength uint64) (*models.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Season
	for sid := range s.seasons {
		season := s.seasons[sid]
		if season.Status != models.SeasonStatusActive || !season.Matches(nameLength) || season.Full() {
			continue
		}
		if best == nil || season.UnitPrice < best.UnitPrice ||
			(season.UnitPrice == best.UnitPrice && season.ID < best.ID) {
			copied := season
			best = &copied
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best, nil
}

// Active returns the currently Active season, if any.
func (s *InMemory) Active(_ context.Context) (*models.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for sid := range s.seasons {
		if s.seasons[sid].Status == models.SeasonStatusActive {
			season := s.seasons[sid]
			return &season, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Reserve consumes one slot of the season, transitioning it to Completed the
// moment the last slot goes. Returns sentinel.ErrExhausted when no capacity
// remains and sentinel.ErrNotFound for unknown ids.
func (s *InMemory) Reserve(_ context.Context, seasonID id.SeasonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[seasonID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if season.Full() {
		return sentinel.ErrExhausted
	}
	season.RegisteredCount++
	if season.Full() {
		season.Status = models.SeasonStatusCompleted
	}
	s.seasons[seasonID] = season
	return nil
}

// Release undoes a reservation after a downstream failure. The counter never
// goes below zero, and a season that auto-completed in the meantime stays
// Completed: the terminal status holds even though the slot was not consumed.
func (s *InMemory) Release(_ context.Context, seasonID id.SeasonID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[seasonID]
	if !ok || season.RegisteredCount == 0 {
		return
	}
	season.RegisteredCount--
	s.seasons[seasonID] = season
}

// Deactivate transitions an Active season to Deactivated. Completed and
// Deactivated seasons are terminal; attempting to deactivate one returns the
// transition error from the model.
func (s *InMemory) Deactivate(_ context.Context, seasonID id.SeasonID) (*models.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[seasonID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := season.CanDeactivate(); err != nil {
		return nil, err
	}
	season.ApplyDeactivation()
	s.seasons[seasonID] = season
	return &season, nil
}

// Get returns a copy of the season.
func (s *InMemory) Get(_ context.Context, seasonID id.SeasonID) (*models.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	season, ok := s.seasons[seasonID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &season, nil
}

// Latest returns the season with the highest id.
func (s *InMemory) Latest(_ context.Context) (*models.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Season
	for sid := range s.seasons {
		season := s.seasons[sid]
		if best == nil || season.ID > best.ID {
			copied := season
			best = &copied
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return best, nil
}

// All returns every season ordered by id.
func (s *InMemory) All(_ context.Context) []models.Season {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Season, 0, len(s.seasons))
	for sid := range s.seasons {
		out = append(out, s.seasons[sid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
