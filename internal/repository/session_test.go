package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/model"
)

// stubTx implements just the pgx.Tx surface the session touches; anything
// else panics via the embedded nil interface.
type stubTx struct {
	pgx.Tx

	commitErr error
	committed bool
	rollbacks int

	rowBalance int64
	rowErr     error

	execErr error
	execSQL []string
}

func (s *stubTx) Commit(ctx context.Context) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = true
	return nil
}

func (s *stubTx) Rollback(ctx context.Context) error {
	s.rollbacks++
	return nil
}

func (s *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return stubRow{balance: s.rowBalance, err: s.rowErr}
}

type stubRow struct {
	balance int64
	err     error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = r.balance
	}
	return nil
}

type stubDB struct {
	tx       *stubTx
	beginErr error
}

func (s *stubDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func newTestSession(tx *stubTx) *Session {
	return newSession(&stubDB{tx: tx})
}

func TestSession_StartTwice(t *testing.T) {
	sess := newTestSession(&stubTx{})
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	err := sess.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
}

func TestSession_MutationsRequireActive(t *testing.T) {
	sess := newTestSession(&stubTx{})
	ctx := context.Background()

	_, err := sess.Debit(ctx, "u1", 100)
	assert.ErrorIs(t, err, ErrSessionNotActive)

	err = sess.AppendTransaction(ctx, &model.Transaction{ID: "t1"})
	assert.ErrorIs(t, err, ErrSessionNotActive)

	err = sess.Commit(ctx)
	assert.ErrorIs(t, err, ErrSessionNotActive)

	err = sess.Abort(ctx)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestSession_DebitInsufficientFunds(t *testing.T) {
	tx := &stubTx{rowErr: pgx.ErrNoRows}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	_, err := sess.Debit(ctx, "u1", 100)
	require.Error(t, err)
	assert.Equal(t, model.CodeInsufficientBalance, model.CodeOf(err))
}

func TestSession_DebitReturnsPostDebitBalance(t *testing.T) {
	tx := &stubTx{rowBalance: 900}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	balance, err := sess.Debit(ctx, "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, model.Money(900), balance)
}

func TestSession_CommitHappyPath(t *testing.T) {
	tx := &stubTx{rowBalance: 900}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	_, err := sess.Debit(ctx, "u1", 100)
	require.NoError(t, err)
	require.NoError(t, sess.AppendTransaction(ctx, &model.Transaction{ID: "t1", UserID: "u1"}))
	require.NoError(t, sess.Commit(ctx))

	assert.True(t, tx.committed)
	assert.Equal(t, "committed", sess.State())

	// End after commit must not roll anything back.
	sess.End(ctx)
	assert.Equal(t, 0, tx.rollbacks)
	assert.Equal(t, "ended", sess.State())
}

func TestSession_AbortDiscardsAndEnds(t *testing.T) {
	tx := &stubTx{rowBalance: 900}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	_, err := sess.Debit(ctx, "u1", 100)
	require.NoError(t, err)
	require.NoError(t, sess.Abort(ctx))
	assert.Equal(t, 1, tx.rollbacks)

	err = sess.Commit(ctx)
	assert.ErrorIs(t, err, ErrSessionNotActive)

	sess.End(ctx)
	assert.Equal(t, 1, tx.rollbacks, "end after abort must not roll back again")
}

func TestSession_EndWhileActiveImplicitlyAborts(t *testing.T) {
	tx := &stubTx{}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	sess.End(ctx)

	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, "ended", sess.State())

	// Idempotent.
	sess.End(ctx)
	assert.Equal(t, 1, tx.rollbacks)
}

func TestSession_CommitFailure(t *testing.T) {
	tx := &stubTx{commitErr: errors.New("connection reset")}
	sess := newTestSession(tx)
	ctx := context.Background()

	require.NoError(t, sess.Start(ctx))
	err := sess.Commit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommitFailed)

	// A failed commit is terminal; End must not try to resolve it again.
	sess.End(ctx)
	assert.Equal(t, 0, tx.rollbacks)
}

func TestSession_StartBeginError(t *testing.T) {
	sess := newSession(&stubDB{beginErr: errors.New("pool exhausted")})
	err := sess.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "idle", sess.State())
}
