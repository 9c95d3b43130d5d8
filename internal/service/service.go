package service

import (
	"context"
	"time"

	"vendora/internal/model"
	"vendora/internal/provider"
)

// Bus topics.
const (
	TopicPurchaseCompleted = "purchases.completed"
	TopicRechargeCommand   = "commands.recharge"
)

// VTUService defines the business operations of the platform. All transport
// layers (HTTP, NATS) and the worker depend on this interface, not on the
// concrete implementation.
type VTUService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Receipt, error)
	Balance(ctx context.Context, userID string) (model.Money, error)
	SetPin(ctx context.Context, userID, pin, confirm string) error
	Recharge(ctx context.Context, req model.RechargeRequest) error
	LastTransaction(ctx context.Context, userID string) (*model.Transaction, error)
	Plans(ctx context.Context, network string, kind model.TransactionKind) ([]model.Plan, error)
	RecentRecipients(ctx context.Context, userID string) ([]model.Recipient, error)
	SyncPurchase(ctx context.Context, ev model.PurchaseEvent) error
}

// Session is the atomic unit of work for one purchase: the balance debit and
// the transaction-log write become durable together on Commit, or not at all.
type Session interface {
	Start(ctx context.Context) error
	Debit(ctx context.Context, userID string, amount model.Money) (model.Money, error)
	AppendTransaction(ctx context.Context, t *model.Transaction) error
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	End(ctx context.Context)
}

// Store is the persistence boundary (ledger, catalog, transaction log,
// recipients).
type Store interface {
	NewSession() Session
	Account(ctx context.Context, userID string) (*model.Account, error)
	Plan(ctx context.Context, planID string) (*model.Plan, error)
	PlansByNetwork(ctx context.Context, network string, kind model.TransactionKind) ([]model.Plan, error)
	Credit(ctx context.Context, userID string, amount model.Money) error
	SetPin(ctx context.Context, userID, pinHash string) error
	LastTransaction(ctx context.Context, userID string) (*model.Transaction, error)
	RecordRecipient(ctx context.Context, ev model.PurchaseEvent) error
	RecentRecipients(ctx context.Context, userID string, limit int) ([]model.Recipient, error)
	SeenEvent(ctx context.Context, transactionID string) (bool, error)
}

// Gate serves the system gating snapshot (maintenance mode, kill switches,
// transaction limit).
type Gate interface {
	Snapshot(ctx context.Context) (model.Settings, error)
}

// PinGuard rate-limits consecutive transaction-pin failures.
type PinGuard interface {
	Locked(ctx context.Context, userID string) (bool, error)
	Fail(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

type MessageBus interface {
	Publish(topic string, data []byte) error
}

type Service struct {
	store    Store
	gate     Gate
	pins     PinGuard
	bus      MessageBus
	registry provider.Registry
	ladder   provider.Ladder

	// attemptTimeout bounds one vendor attempt; overridable in tests.
	attemptTimeout time.Duration
}

func New(store Store, gate Gate, pins PinGuard, bus MessageBus, registry provider.Registry, ladder provider.Ladder) *Service {
	return &Service{
		store:          store,
		gate:           gate,
		pins:           pins,
		bus:            bus,
		registry:       registry,
		ladder:         ladder,
		attemptTimeout: provider.AttemptTimeout,
	}
}

var _ VTUService = (*Service)(nil)
