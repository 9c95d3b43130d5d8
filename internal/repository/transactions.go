package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vendora/internal/model"
)

// LastTransaction returns the most recent transaction for a user, or nil if
// there is none yet.
func (s *Store) LastTransaction(ctx context.Context, userID string) (*model.Transaction, error) {
	var (
		t      model.Transaction
		kind   string
		status string
		amount int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, kind, amount, status, provider, vendor_ref, recipient, message, created_at
		 FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&t.ID, &t.UserID, &kind, &amount, &status,
		&t.Provider, &t.VendorRef, &t.Recipient, &t.Message, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last transaction for %s: %w", userID, err)
	}
	t.Kind = model.TransactionKind(kind)
	t.Status = model.TransactionStatus(status)
	t.Amount = model.Money(amount)
	return &t, nil
}
