package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vendora/internal/model"
)

var (
	ErrSessionAlreadyActive = errors.New("purchase session already active")
	ErrSessionNotActive     = errors.New("purchase session not active")
	ErrCommitFailed         = errors.New("purchase session commit failed")
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateActive
	stateCommitted
	stateAborted
	stateEnded
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateActive:
		return "active"
	case stateCommitted:
		return "committed"
	case stateAborted:
		return "aborted"
	case stateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Session couples the balance debit and the transaction-log write of one
// purchase into a single database transaction. Nothing staged through a
// session is visible to readers until Commit returns nil.
//
// Lifecycle: idle → active → committed|aborted → ended. End is idempotent
// and must run exactly once per session; ending a still-active session
// aborts it.
type Session struct {
	id    string
	db    txBeginner
	tx    pgx.Tx
	state sessionState
}

func newSession(db txBeginner) *Session {
	return &Session{id: uuid.NewString(), db: db, state: stateIdle}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() string {
	return s.state.String()
}

// Start opens the underlying transaction. Fails if the session has already
// been started, committed, aborted or ended.
func (s *Session) Start(ctx context.Context) error {
	if s.state != stateIdle {
		return fmt.Errorf("%w (state=%s)", ErrSessionAlreadyActive, s.state)
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purchase session: %w", err)
	}
	s.tx = tx
	s.state = stateActive
	return nil
}

// Debit stages a conditional decrement of the account balance and returns
// the post-debit balance. The WHERE clause re-checks funds inside the
// transaction so two concurrent purchases cannot both spend the same
// balance, and RETURNING gives the caller the balance after this debit
// rather than a possibly stale pre-session snapshot.
func (s *Session) Debit(ctx context.Context, userID string, amount model.Money) (model.Money, error) {
	if s.state != stateActive {
		return 0, fmt.Errorf("%w (state=%s)", ErrSessionNotActive, s.state)
	}
	var balance int64
	err := s.tx.QueryRow(ctx,
		`UPDATE accounts SET balance = balance - $1
		 WHERE user_id = $2 AND balance >= $1
		 RETURNING balance`,
		amount.Kobo(), userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.E(model.CodeInsufficientBalance, "Insufficient balance, please fund your wallet")
	}
	if err != nil {
		return 0, fmt.Errorf("debit account %s: %w", userID, err)
	}
	return model.Money(balance), nil
}

// AppendTransaction stages the transaction-log record for this purchase.
func (s *Session) AppendTransaction(ctx context.Context, t *model.Transaction) error {
	if s.state != stateActive {
		return fmt.Errorf("%w (state=%s)", ErrSessionNotActive, s.state)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, kind, amount, status, provider, vendor_ref, recipient, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, string(t.Kind), t.Amount.Kobo(), string(t.Status),
		t.Provider, t.VendorRef, t.Recipient, t.Message, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", t.ID, err)
	}
	return nil
}

// Commit makes all staged mutations durable together. A commit error leaves
// the session in an unresolved state that callers must treat as fatal.
func (s *Session) Commit(ctx context.Context) error {
	if s.state != stateActive {
		return fmt.Errorf("%w (state=%s)", ErrSessionNotActive, s.state)
	}
	if err := s.tx.Commit(ctx); err != nil {
		s.state = stateEnded
		return fmt.Errorf("%w: session %s: %v", ErrCommitFailed, s.id, err)
	}
	s.state = stateCommitted
	return nil
}

// Abort discards all staged mutations.
func (s *Session) Abort(ctx context.Context) error {
	if s.state != stateActive {
		return fmt.Errorf("%w (state=%s)", ErrSessionNotActive, s.state)
	}
	s.state = stateAborted
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("abort purchase session %s: %w", s.id, err)
	}
	return nil
}

// End releases the session. Safe to call in any state and more than once.
// An exit path that forgot to resolve an active session gets an implicit
// abort here, so a never-committed session leaves no observable effect.
func (s *Session) End(ctx context.Context) {
	if s.state == stateActive {
		slog.Warn("ending active purchase session, rolling back", "session_id", s.id)
		if s.tx != nil {
			if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				slog.Error("rollback on session end failed", "session_id", s.id, "error", err)
			}
		}
	}
	s.state = stateEnded
}
