package models

import (
	"fmt"
	"time"

	id "registrar/pkg/domain"
)

// Term is the registration and renewal period.
const Term = 365 * 24 * time.Hour

// SubunitsPerToken converts season prices (whole tokens) into the subunit
// amounts quoted to callers.
const SubunitsPerToken uint64 = 100_000_000

// NameRecord is the persistent entry behind a registered name.
//
// Invariants:
//   - A record with ExpiresAt <= now is expired: it is logically available for
//     re-registration but stays in storage until overwritten.
//   - Records are never deleted, only mutated in place (renewal, endpoint,
//     transfer) or overwritten by a fresh registration after expiry.
//   - Owner always matches the wallet index entry pointing at this name; the
//     record store mutates both together.
type NameRecord struct {
	Owner         id.Principal  `json:"owner"`
	Administrator id.Principal  `json:"administrator"`
	Operator      id.Principal  `json:"operator"`
	Resource      id.ResourceID `json:"resource_id"`
	RegisteredAt  time.Time     `json:"registered_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
	PaymentRef    string        `json:"payment_ref"`
	// CustomEndpoint overrides the derived endpoint when non-empty.
	CustomEndpoint string      `json:"custom_endpoint,omitempty"`
	WasGifted      bool        `json:"was_gifted"`
	OriginSeason   id.SeasonID `json:"origin_season,omitempty"`
}

// Expired reports whether the record's term has lapsed at the given instant.
func (r *NameRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Status derives the record status at the given instant.
func (r *NameRecord) Status(now time.Time) NameStatus {
	if r.ExpiresAt.After(now) {
		return NameStatusActive
	}
	return NameStatusExpired
}

// ExtendTerm extends the expiry by one term from its current value — not from
// now. Renewing an already expired name therefore extends from the stale
// expiry and can leave the name still expired; kept deliberately, matching
// how renewal chains have always accrued.
func (r *NameRecord) ExtendTerm(paymentRef string) {
	r.ExpiresAt = r.ExpiresAt.Add(Term)
	r.PaymentRef = paymentRef
}

// Endpoint returns the effective endpoint for a record: the custom override
// when set, otherwise the derived default under the service domain.
func (r *NameRecord) Endpoint(name, serviceDomain string) string {
	if r.CustomEndpoint != "" {
		return r.CustomEndpoint
	}
	return DefaultEndpoint(name, serviceDomain)
}

// DefaultEndpoint derives the endpoint a name resolves to absent an override.
func DefaultEndpoint(name, serviceDomain string) string {
	return fmt.Sprintf("https://mcp.%s/%s", serviceDomain, name)
}

// NameStatus is the derived lifecycle state of a record.
type NameStatus string

const (
	NameStatusActive  NameStatus = "active"
	NameStatusExpired NameStatus = "expired"
)

// NameInfo is the read model returned by info and listing queries.
type NameInfo struct {
	Name          string        `json:"name"`
	Owner         id.Principal  `json:"owner"`
	Administrator id.Principal  `json:"administrator"`
	Operator      id.Principal  `json:"operator"`
	Resource      id.ResourceID `json:"resource_id"`
	RegisteredAt  time.Time     `json:"registered_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
	Endpoint      string        `json:"endpoint"`
	Status        NameStatus    `json:"status"`
	WasGifted     bool          `json:"was_gifted"`
}

// Info builds the read model for a record at the given instant.
func (r *NameRecord) Info(name, serviceDomain string, now time.Time) NameInfo {
	return NameInfo{
		Name:          name,
		Owner:         r.Owner,
		Administrator: r.Administrator,
		Operator:      r.Operator,
		Resource:      r.Resource,
		RegisteredAt:  r.RegisteredAt,
		ExpiresAt:     r.ExpiresAt,
		Endpoint:      r.Endpoint(name, serviceDomain),
		Status:        r.Status(now),
		WasGifted:     r.WasGifted,
	}
}

// SearchResult is the discovery read model.
type SearchResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	WasGifted   bool   `json:"was_gifted"`
}
