package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNameRecord_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	active := NameRecord{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, active.Expired(now))
	assert.Equal(t, NameStatusActive, active.Status(now))

	lapsed := NameRecord{ExpiresAt: now.Add(-time.Hour)}
	assert.True(t, lapsed.Expired(now))
	assert.Equal(t, NameStatusExpired, lapsed.Status(now))

	// Expiry is exclusive: a record expiring exactly now is already expired.
	boundary := NameRecord{ExpiresAt: now}
	assert.True(t, boundary.Expired(now))
}

func TestNameRecord_ExtendTerm(t *testing.T) {
	registered := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := NameRecord{
		RegisteredAt: registered,
		ExpiresAt:    registered.Add(Term),
		PaymentRef:   "tx-1",
	}

	rec.ExtendTerm("tx-2")
	assert.Equal(t, registered.Add(2*Term), rec.ExpiresAt)
	assert.Equal(t, "tx-2", rec.PaymentRef)

	// Renewal always extends from the stored expiry, so a long-lapsed record
	// can remain expired after a single renewal.
	stale := NameRecord{ExpiresAt: registered}
	now := registered.Add(3 * Term)
	stale.ExtendTerm("tx-3")
	assert.True(t, stale.Expired(now))
}

func TestNameRecord_Endpoint(t *testing.T) {
	rec := NameRecord{}
	assert.Equal(t, "https://mcp.ctx.xyz/alpha", rec.Endpoint("alpha", "ctx.xyz"))

	rec.CustomEndpoint = "https://example.com/agent"
	assert.Equal(t, "https://example.com/agent", rec.Endpoint("alpha", "ctx.xyz"))
}

func TestNameRecord_Info(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := NameRecord{
		Owner:        "wallet-1",
		Resource:     "res-1",
		RegisteredAt: now.Add(-time.Hour),
		ExpiresAt:    now.Add(Term),
		WasGifted:    true,
	}

	info := rec.Info("alpha", "ctx.xyz", now)
	assert.Equal(t, "alpha", info.Name)
	assert.Equal(t, rec.Owner, info.Owner)
	assert.Equal(t, NameStatusActive, info.Status)
	assert.Equal(t, "https://mcp.ctx.xyz/alpha", info.Endpoint)
	assert.True(t, info.WasGifted)
}
