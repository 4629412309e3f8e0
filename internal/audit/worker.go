package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Worker consumes audit events from the broker and persists them. It is the
// only background task in the process and only ever appends to its own store.
type Worker struct {
	client *kgo.Client
	store  Store
	logger *slog.Logger
}

// NewWorker joins the audit consumer group on the given brokers.
func NewWorker(brokers []string, topic string, store Store, logger *slog.Logger) (*Worker, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup("registrar-audit"),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Worker{client: client, store: store, logger: logger}, nil
}

// Run polls until the context is cancelled. Malformed records are logged and
// skipped; store failures stop the worker so the operator notices.
func (w *Worker) Run(ctx context.Context) error {
	defer w.client.Close()
	for {
		fetches := w.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fetchErr := range errs {
				w.logger.ErrorContext(ctx, "audit fetch failed",
					"topic", fetchErr.Topic,
					"error", fetchErr.Err,
				)
			}
		}
		var appendErr error
		fetches.EachRecord(func(record *kgo.Record) {
			if appendErr != nil {
				return
			}
			var event Event
			if err := json.Unmarshal(record.Value, &event); err != nil {
				w.logger.WarnContext(ctx, "skipping malformed audit record",
					"offset", record.Offset,
					"error", err,
				)
				return
			}
			appendErr = w.store.Append(ctx, event)
		})
		if appendErr != nil {
			return appendErr
		}
		if err := w.client.CommitUncommittedOffsets(ctx); err != nil {
			w.logger.ErrorContext(ctx, "audit offset commit failed", "error", err)
		}
	}
}
