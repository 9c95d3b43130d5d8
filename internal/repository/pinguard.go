package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxPinFailures = 3
	pinLockWindow  = 15 * time.Minute
)

// PinGuard rate-limits consecutive transaction-pin failures per user. The
// counter lives in Redis with a sliding lock window; a correct pin clears it.
type PinGuard struct {
	rdb *redis.Client
}

func NewPinGuard(rdb *redis.Client) *PinGuard {
	return &PinGuard{rdb: rdb}
}

func pinFailKey(userID string) string {
	return fmt.Sprintf("pinfail:%s", userID)
}

// Locked reports whether the user has hit the failure threshold.
func (g *PinGuard) Locked(ctx context.Context, userID string) (bool, error) {
	n, err := g.rdb.Get(ctx, pinFailKey(userID)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pin failure count for %s: %w", userID, err)
	}
	return n >= maxPinFailures, nil
}

// Fail records one more failed attempt and refreshes the lock window.
func (g *PinGuard) Fail(ctx context.Context, userID string) error {
	key := pinFailKey(userID)
	pipe := g.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, pinLockWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record pin failure for %s: %w", userID, err)
	}
	return nil
}

// Reset clears the failure counter after a successful verification.
func (g *PinGuard) Reset(ctx context.Context, userID string) error {
	if err := g.rdb.Del(ctx, pinFailKey(userID)).Err(); err != nil {
		return fmt.Errorf("reset pin failures for %s: %w", userID, err)
	}
	return nil
}
