package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"vendora/internal/model"
	"vendora/internal/service"
)

// PurchaseWorker listens for committed purchase events and applies the
// fire-and-forget bookkeeping (recently-used recipients). Failures here are
// logged and never touch the purchase outcome, which already committed.
type PurchaseWorker struct {
	svc      service.VTUService
	natsConn *nats.Conn
}

func NewPurchaseWorker(svc service.VTUService, nc *nats.Conn) *PurchaseWorker {
	return &PurchaseWorker{svc: svc, natsConn: nc}
}

// Start subscribes to purchase events and blocks until ctx is cancelled.
func (w *PurchaseWorker) Start(ctx context.Context) error {
	// QueueSubscribe: with multiple API replicas only one worker in the
	// group receives each event.
	sub, err := w.natsConn.QueueSubscribe(service.TopicPurchaseCompleted, "vendora_workers", func(m *nats.Msg) {
		var ev model.PurchaseEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			slog.Error("worker: failed to unmarshal purchase event", "error", err)
			return
		}

		if err := w.svc.SyncPurchase(ctx, ev); err != nil {
			slog.Error("worker: failed to sync purchase event",
				"transaction_id", ev.TransactionID,
				"user_id", ev.UserID,
				"error", err,
			)
			return
		}

		slog.Info("worker: purchase event synced",
			"transaction_id", ev.TransactionID,
			"user_id", ev.UserID,
		)
	})
	if err != nil {
		return fmt.Errorf("worker: failed to subscribe to NATS: %w", err)
	}

	slog.Info("Purchase worker is running")

	<-ctx.Done()

	slog.Info("Worker received shutdown signal, draining subscription...")
	return sub.Drain()
}

// Stop implements the infrastructure.Server interface (shutdown is via ctx).
func (w *PurchaseWorker) Stop(ctx context.Context) error {
	return nil
}
