// Package policy owns the admin set, short-name governance, and the reserved
// name set. Authorization checks on who may mutate this state belong to the
// service layer; this package only answers and records.
package policy

import (
	"sort"
	"sync"

	"registrar/internal/registry/models"
	"registrar/internal/registry/validate"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Policy is the in-memory admin/governance state.
//
// Invariants:
//   - The admin set is never empty after initialization; removing the last
//     admin is rejected.
//   - The reserved-name set is append-only.
type Policy struct {
	mu       sync.RWMutex
	admins   map[id.Principal]struct{}
	mode     models.ShortNameMode
	approved map[id.Principal]struct{}
	reserved map[string]struct{}
}

// New seeds the policy with one bootstrap admin, the fixed reserved-name list,
// and short-name governance in whitelist-only mode.
func New(bootstrapAdmin id.Principal) *Policy {
	p := &Policy{
		admins:   map[id.Principal]struct{}{bootstrapAdmin: {}},
		mode:     models.ShortNameModeWhitelistOnly,
		approved: make(map[id.Principal]struct{}),
		reserved: make(map[string]struct{}, len(models.ReservedNameSeed)),
	}
	for _, name := range models.ReservedNameSeed {
		p.reserved[name] = struct{}{}
	}
	return p
}

// IsAdmin reports whether the principal is in the admin set.
func (p *Policy) IsAdmin(principal id.Principal) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.admins[principal]
	return ok
}

// AddAdmin adds a principal to the admin set. Idempotent.
func (p *Policy) AddAdmin(principal id.Principal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins[principal] = struct{}{}
}

// RemoveAdmin removes a principal from the admin set. Removing the last admin
// returns sentinel.ErrInvalidState so the system can never be orphaned.
func (p *Policy) RemoveAdmin(principal id.Principal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.admins) <= 1 {
		return sentinel.ErrInvalidState
	}
	delete(p.admins, principal)
	return nil
}

// Admins returns the admin set in stable order.
func (p *Policy) Admins() []id.Principal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedPrincipals(p.admins)
}

// ShortNameAllowed decides whether a caller may take the given name.
// Names at or above the threshold are always allowed; admins are always
// allowed; otherwise the short-name mode governs.
func (p *Policy) ShortNameAllowed(name string, caller id.Principal) bool {
	if !validate.IsShort(name) {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.admins[caller]; ok {
		return true
	}
	switch p.mode {
	case models.ShortNameModeOpen:
		return true
	case models.ShortNameModeWhitelistOnly:
		_, ok := p.approved[caller]
		return ok
	default:
		return false
	}
}

// SetShortNameMode switches short-name governance.
func (p *Policy) SetShortNameMode(mode models.ShortNameMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// ShortNameMode returns the current governance mode.
func (p *Policy) ShortNameMode() models.ShortNameMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// ApproveShortUser whitelists a principal for short names. Idempotent.
func (p *Policy) ApproveShortUser(principal id.Principal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approved[principal] = struct{}{}
}

// RevokeShortUser removes a principal from the short-name whitelist.
func (p *Policy) RevokeShortUser(principal id.Principal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.approved, principal)
}

// ApprovedShortUsers returns the whitelist in stable order.
func (p *Policy) ApprovedShortUsers() []id.Principal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedPrincipals(p.approved)
}

// AddReservedName appends a name to the reserved set. The set is append-only.
func (p *Policy) AddReservedName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserved[name] = struct{}{}
}

// IsReserved reports whether the name is reserved.
func (p *Policy) IsReserved(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.reserved[name]
	return ok
}

func sortedPrincipals(set map[id.Principal]struct{}) []id.Principal {
	out := make([]id.Principal, 0, len(set))
	for principal := range set {
		out = append(out, principal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
