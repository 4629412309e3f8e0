package audit

import (
	"context"
	"time"
)

// Publisher captures structured audit events. Emission is best-effort from
// the engine's point of view: an audit failure never rolls back a committed
// allocation.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Store is the append-only persistence behind the audit trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByName(ctx context.Context, name string) ([]Event, error)
}

// StorePublisher appends events straight to a store. It is the in-process
// publisher used when no broker is configured, and the test double's stand-in.
type StorePublisher struct {
	store Store
}

func NewStorePublisher(store Store) *StorePublisher {
	return &StorePublisher{store: store}
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}
