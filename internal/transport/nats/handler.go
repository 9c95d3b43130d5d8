package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"vendora/internal/model"
	"vendora/internal/service"
)

// Handler subscribes to NATS command topics and delegates to the service.
// Back-office systems push recharges this way instead of over HTTP.
type Handler struct {
	svc  service.VTUService
	nc   *nats.Conn
	subs []*nats.Subscription
}

func NewHandler(svc service.VTUService, nc *nats.Conn) *Handler {
	return &Handler{svc: svc, nc: nc}
}

// Start subscribes to command topics and blocks until ctx is cancelled.
func (h *Handler) Start(ctx context.Context) error {
	sub, err := h.nc.QueueSubscribe(service.TopicRechargeCommand, "vendora_commands", func(m *nats.Msg) {
		var req model.RechargeRequest
		if err := json.Unmarshal(m.Data, &req); err != nil {
			slog.Error("nats: failed to unmarshal recharge command", "error", err)
			return
		}
		if err := h.svc.Recharge(ctx, req); err != nil {
			slog.Error("nats: recharge failed", "error", err, "user_id", req.UserID)
		}
	})
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	slog.Info("NATS command handler is running")

	<-ctx.Done()
	slog.Info("NATS command handler shutting down, draining subscriptions...")

	for _, s := range h.subs {
		_ = s.Drain()
	}
	return nil
}

func (h *Handler) Stop(ctx context.Context) error {
	for _, s := range h.subs {
		_ = s.Unsubscribe()
	}
	return nil
}
