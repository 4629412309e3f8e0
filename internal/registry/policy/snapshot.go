package policy

import (
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
)

// Snapshot is the serializable image of the policy state.
type Snapshot struct {
	Admins   []id.Principal       `json:"admins"`
	Mode     models.ShortNameMode `json:"mode"`
	Approved []id.Principal       `json:"approved"`
	Reserved []string             `json:"reserved"`
}

// Export copies the full policy state for the host snapshot mechanism.
func (p *Policy) Export() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := Snapshot{
		Admins:   sortedPrincipals(p.admins),
		Mode:     p.mode,
		Approved: sortedPrincipals(p.approved),
		Reserved: make([]string, 0, len(p.reserved)),
	}
	for name := range p.reserved {
		snap.Reserved = append(snap.Reserved, name)
	}
	return snap
}

// Import replaces the policy state with a previously exported snapshot.
// An empty admin list is ignored: the admin set must never be emptied.
func (p *Policy) Import(snap Snapshot) {
	if len(snap.Admins) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.admins = make(map[id.Principal]struct{}, len(snap.Admins))
	for _, admin := range snap.Admins {
		p.admins[admin] = struct{}{}
	}
	p.mode = snap.Mode
	p.approved = make(map[id.Principal]struct{}, len(snap.Approved))
	for _, principal := range snap.Approved {
		p.approved[principal] = struct{}{}
	}
	p.reserved = make(map[string]struct{}, len(snap.Reserved))
	for _, name := range snap.Reserved {
		p.reserved[name] = struct{}{}
	}
}
