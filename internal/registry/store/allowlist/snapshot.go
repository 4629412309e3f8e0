package allowlist

import (
	id "registrar/pkg/domain"
)

// Snapshot is the serializable image of the allowlist store.
type Snapshot struct {
	Addresses map[id.SeasonID][]string `json:"addresses"`
}

// Export copies the full store state for the host snapshot mechanism.
func (s *InMemory) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Addresses: make(map[id.SeasonID][]string, len(s.addresses))}
	for sid, set := range s.addresses {
		addrs := make([]string, 0, len(set))
		for addr := range set {
			addrs = append(addrs, addr)
		}
		snap.Addresses[sid] = addrs
	}
	return snap
}

// Import replaces the store state with a previously exported snapshot.
func (s *InMemory) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = make(map[id.SeasonID]map[string]struct{}, len(snap.Addresses))
	for sid, addrs := range snap.Addresses {
		set := make(map[string]struct{}, len(addrs))
		for _, addr := range addrs {
			set[addr] = struct{}{}
		}
		s.addresses[sid] = set
	}
}
