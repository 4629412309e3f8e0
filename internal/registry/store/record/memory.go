// Package record owns the name→record map and the identity→name wallet index.
// The two structures are mutated together under one lock so the index never
// points at a record owned by someone else.
package record

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Entry pairs a name with its record for listing queries.
type Entry struct {
	Name   string
	Record models.NameRecord
}

// InMemory keeps records and the wallet index in plain maps. Records are
// never deleted, only overwritten when a name is re-registered after expiry.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.NameRecord
	wallets map[id.Principal]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[string]models.NameRecord),
		wallets: make(map[id.Principal]string),
	}
}

// IsAvailable reports whether the name can be (re-)registered: no record
// exists, or the existing record has expired.
func (s *InMemory) IsAvailable(_ context.Context, name string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return true
	}
	return rec.Expired(now)
}

// Get returns a copy of the record for the name.
func (s *InMemory) Get(_ context.Context, name string) (*models.NameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}

// Put upserts a record and points the wallet index at the new owner.
// Availability and ownership invariants are the caller's responsibility.
// When an expired record is overwritten, the previous owner's index entry is
// dropped so they are free to register again.
func (s *InMemory) Put(_ context.Context, name string, rec models.NameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.records[name]; ok && s.wallets[prev.Owner] == name && prev.Owner != rec.Owner {
		delete(s.wallets, prev.Owner)
	}
	s.records[name] = rec
	s.wallets[rec.Owner] = name
	return nil
}

// Execute atomically validates then mutates a record in place. The lock is
// held across both callbacks so no other mutation can interleave.
func (s *InMemory) Execute(_ context.Context, name string, validate func(*models.NameRecord) error, mutate func(*models.NameRecord)) (*models.NameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&rec); err != nil {
		return nil, err
	}
	mutate(&rec)
	s.records[name] = rec
	return &rec, nil
}

// TransferOwner moves a record to a new owner and swings the wallet index in
// the same critical section: the old owner's entry is removed, the new
// owner's entry installed.
func (s *InMemory) TransferOwner(_ context.Context, name string, newOwner id.Principal) (*models.NameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	oldOwner := rec.Owner
	rec.Owner = newOwner
	s.records[name] = rec
	if s.wallets[oldOwner] == name {
		delete(s.wallets, oldOwner)
	}
	s.wallets[newOwner] = name
	return &rec, nil
}

// WalletName returns the name the wallet currently holds.
func (s *InMemory) WalletName(_ context.Context, wallet id.Principal) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.wallets[wallet]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return name, nil
}

// List returns all records, optionally filtered by owner, sorted by name.
func (s *InMemory) List(_ context.Context, owner id.Principal) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.records))
	for name, rec := range s.records {
		if !owner.IsNil() && rec.Owner != owner {
			continue
		}
		out = append(out, Entry{Name: name, Record: rec})
	}
	sortEntries(out)
	return out
}

// FindSince returns records registered strictly after the given instant,
// sorted by name.
func (s *InMemory) FindSince(_ context.Context, since time.Time) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for name, rec := range s.records {
		if rec.RegisteredAt.After(since) {
			out = append(out, Entry{Name: name, Record: rec})
		}
	}
	sortEntries(out)
	return out
}

// Search returns unexpired records whose name contains the substring,
// case-insensitively. An empty query matches every unexpired record.
func (s *InMemory) Search(_ context.Context, query string, now time.Time) []Entry {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for name, rec := range s.records {
		if !rec.ExpiresAt.After(now) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, Entry{Name: name, Record: rec})
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}
