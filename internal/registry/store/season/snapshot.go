package season

import (
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
)

// Snapshot is the serializable image of the season ledger.
type Snapshot struct {
	Seasons map[id.SeasonID]models.Season `json:"seasons"`
	NextID  id.SeasonID                   `json:"next_id"`
}

// Export copies the full ledger state for the host snapshot mechanism.
func (s *InMemory) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Seasons: make(map[id.SeasonID]models.Season, len(s.seasons)),
		NextID:  s.nextID,
	}
	for sid, season := range s.seasons {
		snap.Seasons[sid] = season
	}
	return snap
}

// Import replaces the ledger state with a previously exported snapshot.
func (s *InMemory) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons = make(map[id.SeasonID]models.Season, len(snap.Seasons))
	for sid, season := range snap.Seasons {
		s.seasons[sid] = season
	}
	s.nextID = snap.NextID
	if s.nextID == 0 {
		s.nextID = 1
	}
}
