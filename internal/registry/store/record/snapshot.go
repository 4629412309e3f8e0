package record

import (
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
)

// Snapshot is the serializable image of the record store.
type Snapshot struct {
	Records map[string]models.NameRecord `json:"records"`
	Wallets map[id.Principal]string      `json:"wallets"`
}

// Export copies the full store state for the host snapshot mechanism.
func (s *InMemory) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Records: make(map[string]models.NameRecord, len(s.records)),
		Wallets: make(map[id.Principal]string, len(s.wallets)),
	}
	for name, rec := range s.records {
		snap.Records[name] = rec
	}
	for wallet, name := range s.wallets {
		snap.Wallets[wallet] = name
	}
	return snap
}

// Import replaces the store state with a previously exported snapshot.
func (s *InMemory) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]models.NameRecord, len(snap.Records))
	for name, rec := range snap.Records {
		s.records[name] = rec
	}
	s.wallets = make(map[id.Principal]string, len(snap.Wallets))
	for wallet, name := range snap.Wallets {
		s.wallets[wallet] = name
	}
}
