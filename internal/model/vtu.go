package model

import "time"

// TransactionKind labels what a ledger movement paid for.
type TransactionKind string

const (
	KindData     TransactionKind = "data"
	KindAirtime  TransactionKind = "airtime"
	KindRecharge TransactionKind = "recharge"
)

// TransactionStatus is final at creation time: the transaction log is
// append-only, records are never updated.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

type Account struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Balance Money  `json:"balance"`
	// PinHash is the bcrypt hash of the transaction pin. Empty until the
	// user sets one via POST /pin.
	PinHash string `json:"-"`
	HasPin  bool   `json:"has_pin"`
	// TxLimit overrides the global per-transaction limit when > 0.
	TxLimit Money `json:"tx_limit"`
}

// Plan is immutable reference data describing a purchasable bundle.
type Plan struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Network        string          `json:"network"`
	Kind           TransactionKind `json:"kind"`
	Family         string          `json:"family"`
	Provider       string          `json:"provider"`
	ExternalPlanID string          `json:"external_plan_id"`
	Price          Money           `json:"price"`
}

// PurchaseRequest is the validated input of one purchase call. UserID is
// filled in from the authenticated identity, never from the request body.
type PurchaseRequest struct {
	UserID      string          `json:"-"`
	Kind        TransactionKind `json:"-"`
	PlanID      string          `json:"plan_id"`
	PhoneNumber string          `json:"phone_number"`
	Pin         string          `json:"pin"`
	// BypassValidation skips the network/phone-prefix consistency check
	// only. Financial checks are never bypassable.
	BypassValidation bool `json:"bypass_validation,omitempty"`
}

type RechargeRequest struct {
	UserID string `json:"user_id"`
	Amount Money  `json:"amount"`
}

type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Kind      TransactionKind   `json:"kind"`
	Amount    Money             `json:"amount"`
	Status    TransactionStatus `json:"status"`
	Provider  string            `json:"provider,omitempty"`
	VendorRef string            `json:"vendor_ref,omitempty"`
	Recipient string            `json:"recipient,omitempty"`
	Message   string            `json:"message,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Receipt is what a successful purchase returns to the caller.
type Receipt struct {
	TransactionID string `json:"transaction_id"`
	Amount        Money  `json:"amount"`
	Provider      string `json:"provider"`
	VendorRef     string `json:"vendor_ref,omitempty"`
	Message       string `json:"message"`
	NewBalance    Money  `json:"new_balance"`
}

// Settings is the gating snapshot read once per purchase. It is a value,
// not shared mutable state: refreshing it never changes an in-flight call.
type Settings struct {
	MaintenanceMode   bool            `json:"maintenance_mode"`
	Enabled           map[string]bool `json:"enabled"`
	MaxPerTransaction Money           `json:"max_per_transaction"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// KindEnabled reports whether the per-kind kill switch allows this
// transaction type. Unknown kinds are disabled.
func (s Settings) KindEnabled(kind TransactionKind) bool {
	return s.Enabled[string(kind)]
}

// PurchaseEvent is published on the bus after a purchase commits.
// Consumers must treat TransactionID as the idempotency key.
type PurchaseEvent struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	PlanID        string          `json:"plan_id"`
	Network       string          `json:"network"`
	Kind          TransactionKind `json:"kind"`
	Amount        Money           `json:"amount"`
	PhoneNumber   string          `json:"phone_number"`
	Provider      string          `json:"provider"`
	VendorRef     string          `json:"vendor_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Recipient is a recently topped-up destination number, maintained by the
// worker from purchase events.
type Recipient struct {
	UserID      string    `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Network     string    `json:"network"`
	LastUsedAt  time.Time `json:"last_used_at"`
	UseCount    int       `json:"use_count"`
}
