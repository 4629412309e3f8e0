// Package allowlist owns the per-season sets of externally verified addresses
// eligible for admin-mediated creation.
package allowlist

import (
	"context"
	"sort"
	"sync"

	id "registrar/pkg/domain"
)

// InMemory maps season ids to address sets. Whether additions are legal for a
// season's status is decided by the service against the season ledger; this
// store only holds membership.
type InMemory struct {
	mu        sync.RWMutex
	addresses map[id.SeasonID]map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{addresses: make(map[id.SeasonID]map[string]struct{})}
}

// Add records an address for a season. Idempotent.
func (s *InMemory) Add(_ context.Context, seasonID id.SeasonID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.addresses[seasonID]
	if !ok {
		set = make(map[string]struct{})
		s.addresses[seasonID] = set
	}
	set[address] = struct{}{}
}

// Contains reports whether the address is authorized for the season.
func (s *InMemory) Contains(_ context.Context, seasonID id.SeasonID, address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.addresses[seasonID]
	if !ok {
		return false
	}
	_, ok = set[address]
	return ok
}

// ForSeason returns the season's addresses in stable order. Entries remain
// queryable after the season leaves Active.
func (s *InMemory) ForSeason(_ context.Context, seasonID id.SeasonID) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.addresses[seasonID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
