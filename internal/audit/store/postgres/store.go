// Package postgres persists the audit trail. The engine's own state is
// in-memory by design; only the append-only audit log outlives the process
// through this store.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"registrar/internal/audit"
	id "registrar/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL,
	action     TEXT NOT NULL,
	actor      TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	recipient  TEXT NOT NULL DEFAULT '',
	season_id  BIGINT NOT NULL DEFAULT 0,
	fee        BIGINT NOT NULL DEFAULT 0,
	detail     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_name_idx ON audit_events (name);
`

type Store struct {
	pool *pgxpool.Pool
}

// New connects and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect audit store: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_events (ts, action, actor, name, recipient, season_id, fee, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.Timestamp, string(event.Action), event.Actor.String(), event.Name,
		event.Recipient.String(), uint64(event.SeasonID), event.Fee, event.Detail,
	)
	return err
}

func (s *Store) ListByName(ctx context.Context, name string) ([]audit.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT ts, action, actor, name, recipient, season_id, fee, detail
		 FROM audit_events WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			event            audit.Event
			action           string
			actor, recipient string
			seasonID         uint64
		)
		if err := rows.Scan(&event.Timestamp, &action, &actor, &event.Name, &recipient, &seasonID, &event.Fee, &event.Detail); err != nil {
			return nil, err
		}
		event.Action = audit.Action(action)
		event.Actor = id.Principal(actor)
		event.Recipient = id.Principal(recipient)
		event.SeasonID = id.SeasonID(seasonID)
		out = append(out, event)
	}
	return out, rows.Err()
}

func (s *Store) Close() {
	s.pool.Close()
}
