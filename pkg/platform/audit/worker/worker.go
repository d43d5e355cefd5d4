package worker

import (
	"context"
	"log/slog"

	audit "jobboard/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A failed
// append is logged and the event dropped; the worker keeps draining.
type Worker struct {
	store  audit.Appender
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Appender, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until it is closed or ctx is cancelled. Events still
// buffered at cancellation are left for the owner to drain.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.append(ctx, event)
		}
	}
}

// Drain persists whatever is left in a closed inbox. It uses its own context
// so shutdown cancellation does not drop the tail.
func (w *Worker) Drain(ctx context.Context) {
	for event := range w.inbox {
		w.append(ctx, event)
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"error", err,
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
}
