package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's channel and appends them
// to each configured store. A failing sink is logged and skipped; the audit
// trail must never affect ledger writes.
type Worker struct {
	stores []Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, stores ...Store) *Worker {
	return &Worker{stores: stores, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, store := range w.stores {
				if err := store.Append(ctx, event); err != nil {
					w.logger.Error("audit append failed",
						"action", event.Action,
						"username", event.Username,
						"error", err,
					)
				}
			}
		}
	}
}
