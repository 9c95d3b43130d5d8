package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"vendora/internal/model"
)

const (
	settingsKey = "settings:snapshot"
	settingsTTL = 30 * time.Second
)

// SettingsCache serves the gating snapshot (maintenance flag, per-kind kill
// switches, transaction limit). Each purchase gets one immutable snapshot;
// the Redis copy bounds how stale that snapshot can be.
type SettingsCache struct {
	rdb  *redis.Client
	pool *pgxpool.Pool
}

func NewSettingsCache(rdb *redis.Client, pool *pgxpool.Pool) *SettingsCache {
	return &SettingsCache{rdb: rdb, pool: pool}
}

// Snapshot returns current settings, preferring the Redis copy and warming
// it from Postgres on a miss.
func (c *SettingsCache) Snapshot(ctx context.Context) (model.Settings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if err == nil {
		var s model.Settings
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return s, nil
		}
		// Corrupt cache entry: fall through to the database.
		slog.Warn("discarding unreadable settings cache entry")
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("settings cache read failed, falling back to database", "error", err)
	}

	s, err := c.load(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	if data, jsonErr := json.Marshal(s); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, settingsKey, data, settingsTTL).Err(); setErr != nil {
			slog.Warn("settings cache write failed", "error", setErr)
		}
	}
	return s, nil
}

func (c *SettingsCache) load(ctx context.Context) (model.Settings, error) {
	var (
		s              model.Settings
		dataEnabled    bool
		airtimeEnabled bool
		maxPerTx       int64
	)
	err := c.pool.QueryRow(ctx,
		`SELECT maintenance_mode, data_enabled, airtime_enabled, max_per_transaction, updated_at
		 FROM app_settings WHERE id = 1`,
	).Scan(&s.MaintenanceMode, &dataEnabled, &airtimeEnabled, &maxPerTx, &s.UpdatedAt)
	if err != nil {
		return model.Settings{}, fmt.Errorf("load app settings: %w", err)
	}
	s.Enabled = map[string]bool{
		string(model.KindData):    dataEnabled,
		string(model.KindAirtime): airtimeEnabled,
	}
	s.MaxPerTransaction = model.Money(maxPerTx)
	return s, nil
}
