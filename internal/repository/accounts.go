package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vendora/internal/model"
)

// Store is the persistence layer over Postgres: account balances, the plan
// catalog, the append-only transaction log and recent recipients. Balance
// and log writes go through a Session; everything here is read-side or
// single-statement.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewSession returns an idle purchase session bound to this store.
func (s *Store) NewSession() *Session {
	return newSession(s.pool)
}

func (s *Store) Account(ctx context.Context, userID string) (*model.Account, error) {
	var (
		acct    model.Account
		balance int64
		txLimit int64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, email, balance, COALESCE(pin_hash, ''), has_pin, tx_limit
		 FROM accounts WHERE user_id = $1`,
		userID,
	).Scan(&acct.UserID, &acct.Email, &balance, &acct.PinHash, &acct.HasPin, &txLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.E(model.CodeUserNotFound, "User not found, please contact admin")
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", userID, err)
	}
	acct.Balance = model.Money(balance)
	acct.TxLimit = model.Money(txLimit)
	return &acct, nil
}

// Credit adds funds to an account outside any purchase session (recharge /
// back-office path).
func (s *Store) Credit(ctx context.Context, userID string, amount model.Money) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE user_id = $2`,
		amount.Kobo(), userID,
	)
	if err != nil {
		return fmt.Errorf("credit account %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.E(model.CodeUserNotFound, "User not found, please contact admin")
	}
	return nil
}

// SetPin stores the bcrypt hash of the transaction pin. The pin can only be
// set once; the WHERE clause makes the one-time rule race-safe.
func (s *Store) SetPin(ctx context.Context, userID, pinHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET pin_hash = $1, has_pin = TRUE WHERE user_id = $2 AND has_pin = FALSE`,
		pinHash, userID,
	)
	if err != nil {
		return fmt.Errorf("set pin for %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.E(model.CodeConflict, "Transaction pin already set")
	}
	return nil
}
