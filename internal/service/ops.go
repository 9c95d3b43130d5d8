package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"vendora/internal/model"
)

func (s *Service) Balance(ctx context.Context, userID string) (model.Money, error) {
	acct, err := s.store.Account(ctx, userID)
	if err != nil {
		return 0, asDomain(err)
	}
	return acct.Balance, nil
}

// SetPin hashes and stores the transaction pin. One-time: changing a pin is
// an out-of-scope support flow.
func (s *Service) SetPin(ctx context.Context, userID, pin, confirm string) error {
	if !pinPattern.MatchString(pin) {
		return model.E(model.CodeInvalidRequest, "Transaction pin must be 4 digits")
	}
	if pin != confirm {
		return model.E(model.CodeInvalidRequest, "Transaction pin does not match")
	}
	if _, err := s.store.Account(ctx, userID); err != nil {
		return asDomain(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return model.Wrap(model.CodeUnexpected, "Could not set transaction pin", err)
	}
	return asDomain(s.store.SetPin(ctx, userID, string(hash)))
}

func (s *Service) Recharge(ctx context.Context, req model.RechargeRequest) error {
	if req.UserID == "" || req.Amount <= 0 {
		return model.E(model.CodeInvalidRequest, "Recharge needs a user and a positive amount")
	}
	return asDomain(s.store.Credit(ctx, req.UserID, req.Amount))
}

func (s *Service) LastTransaction(ctx context.Context, userID string) (*model.Transaction, error) {
	t, err := s.store.LastTransaction(ctx, userID)
	if err != nil {
		return nil, asDomain(err)
	}
	return t, nil
}

func (s *Service) Plans(ctx context.Context, network string, kind model.TransactionKind) ([]model.Plan, error) {
	plans, err := s.store.PlansByNetwork(ctx, network, kind)
	if err != nil {
		return nil, asDomain(err)
	}
	return plans, nil
}

func (s *Service) RecentRecipients(ctx context.Context, userID string) ([]model.Recipient, error) {
	recipients, err := s.store.RecentRecipients(ctx, userID, 10)
	if err != nil {
		return nil, asDomain(err)
	}
	return recipients, nil
}

// SyncPurchase applies the fire-and-forget bookkeeping for a committed
// purchase (recently-used recipients). Idempotent per transaction id so bus
// redelivery is harmless.
func (s *Service) SyncPurchase(ctx context.Context, ev model.PurchaseEvent) error {
	seen, err := s.store.SeenEvent(ctx, ev.TransactionID)
	if err != nil {
		return err
	}
	if seen {
		slog.Info("purchase event already processed", "transaction_id", ev.TransactionID)
		return nil
	}
	return s.store.RecordRecipient(ctx, ev)
}
