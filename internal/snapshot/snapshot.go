// Package snapshot persists the in-memory registry state to Redis so a
// restarted process resumes where the previous one stopped.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"registrar/internal/platform/redis"
	"registrar/internal/registry/policy"
	"registrar/internal/registry/store/allowlist"
	"registrar/internal/registry/store/record"
	"registrar/internal/registry/store/season"
)

const Key = "registrar:snapshot"

// Image is the combined serialized state of all in-memory stores.
type Image struct {
	TakenAt   time.Time          `json:"taken_at"`
	Records   record.Snapshot    `json:"records"`
	Seasons   season.Snapshot    `json:"seasons"`
	Allowlist allowlist.Snapshot `json:"allowlist"`
	Policy    policy.Snapshot    `json:"policy"`
}

// Manager exports and restores registry state through Redis.
type Manager struct {
	client    *redis.Client
	records   *record.InMemory
	seasons   *season.InMemory
	allowlist *allowlist.InMemory
	policy    *policy.Policy
	logger    *slog.Logger
}

func NewManager(
	client *redis.Client,
	records *record.InMemory,
	seasons *season.InMemory,
	allowlist *allowlist.InMemory,
	pol *policy.Policy,
	logger *slog.Logger) *Manager {
	return &Manager{
		client:    client,
		records:   records,
		seasons:   seasons,
		allowlist: allowlist,
		policy:    pol,
		logger:    logger,
	}
}

// Save serializes the current state and writes it to Redis.
func (m *Manager) Save(ctx context.Context) error {
	img := Image{
		TakenAt:   time.Now().UTC(),
		Records:   m.records.Export(),
		Seasons:   m.seasons.Export(),
		Allowlist: m.allowlist.Export(),
		Policy:    m.policy.Export(),
	}
	payload, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := m.client.Set(ctx, Key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Restore loads the latest snapshot into the stores. A missing snapshot is
// not an error; the process simply starts empty.
func (m *Manager) Restore(ctx context.Context) error {
	payload, err := m.client.Get(ctx, Key).Bytes()
	if errors.Is(err, goredis.Nil) {
		m.logger.InfoContext(ctx, "no snapshot found, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var img Image
	if err := json.Unmarshal(payload, &img); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	m.records.Import(img.Records)
	m.seasons.Import(img.Seasons)
	m.allowlist.Import(img.Allowlist)
	m.policy.Import(img.Policy)
	m.logger.InfoContext(ctx, "restored snapshot", "taken_at", img.TakenAt)
	return nil
}

// Run saves a snapshot every interval until the context is canceled, then
// takes a final snapshot so shutdown never loses committed state.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Save(shutdownCtx); err != nil {
				return fmt.Errorf("final snapshot: %w", err)
			}
			return nil
		case <-ticker.C:
			if err := m.Save(ctx); err != nil {
				m.logger.ErrorContext(ctx, "periodic snapshot failed", "error", err)
			}
		}
	}
}
