// Package storage persists users, test results, and bot configuration.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"percentbot/core/logger"
	"percentbot/internal/domain"

	"log/slog"
)

// ConfigKeyMainText is the well-known key of the response template.
const ConfigKeyMainText = "main_text"

// DefaultMainText seeds the template when the config row is absent.
const DefaultMainText = "🌈 Your result: {percentage}%"

// UserStats is the per-user counter row.
type UserStats struct {
	TestsCount int          `db:"tests_count"`
	LastTest   sql.NullTime `db:"last_test"`
}

// Aggregate is the windowed summary over the results log.
type Aggregate struct {
	Average float64 `db:"average"`
	Count   int     `db:"count"`
}

// Store wraps the database handle with domain queries.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store over an established connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureDefaults seeds the default template if no config row exists yet.
// Safe to call on every startup.
func (s *Store) EnsureDefaults(ctx context.Context) error {
	const q = `
		INSERT INTO config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, ConfigKeyMainText, DefaultMainText); err != nil {
		return domain.NewStorageFault("seed config", err)
	}
	return nil
}

// GetConfig returns the value for key or domain.ErrNotFound.
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM config WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", domain.NewStorageFault("get config", err)
	}
	return value, nil
}

// SetConfig inserts or overwrites the value for key.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return domain.NewStorageFault("set config", err)
	}
	logger.SVCResults.LogAttrs(ctx, slog.LevelInfo, "config.updated",
		slog.String("event", "config.updated"),
		slog.String("key", key),
	)
	return nil
}

// RecordTest upserts the user's counters and appends one result row.
// Both effects commit together or not at all.
func (s *Store) RecordTest(ctx context.Context, userID int64, displayName string, result int) error {
	if result < 0 || result > 100 {
		return domain.NewValidationError(fmt.Sprintf("result %d out of range [0,100]", result))
	}

	start := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStorageFault("begin record test", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsertUser = `
		INSERT INTO users (user_id, username, tests_count, last_test)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (user_id) DO UPDATE SET
			username    = EXCLUDED.username,
			tests_count = users.tests_count + 1,
			last_test   = now()`
	if _, err := tx.ExecContext(ctx, upsertUser, userID, displayName); err != nil {
		return domain.NewStorageFault("upsert user", err)
	}

	const insertTest = `INSERT INTO tests (user_id, result) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insertTest, userID, result); err != nil {
		return domain.NewStorageFault("append result", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageFault("commit record test", err)
	}

	logger.SVCResults.LogAttrs(ctx, slog.LevelDebug, "result.recorded",
		slog.String("event", "result.recorded"),
		slog.Int64("user_id", userID),
		slog.Int("result", result),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// GetUserStats returns the user's cumulative counters or domain.ErrNotFound.
func (s *Store) GetUserStats(ctx context.Context, userID int64) (UserStats, error) {
	var stats UserStats
	const q = `SELECT tests_count, last_test FROM users WHERE user_id = $1`
	err := s.db.GetContext(ctx, &stats, q, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return UserStats{}, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return UserStats{}, domain.NewStorageFault("get user stats", err)
	}
	return stats, nil
}

// Aggregate averages results newer than now minus windowDays.
// An empty window yields (0.0, 0), never NULL.
func (s *Store) Aggregate(ctx context.Context, windowDays int) (Aggregate, error) {
	var agg Aggregate
	const q = `
		SELECT
			COALESCE(ROUND(AVG(result)::numeric, 1), 0)::float8 AS average,
			COUNT(*) AS count
		FROM tests
		WHERE timestamp >= now() - ($1 * INTERVAL '1 day')`
	if err := s.db.GetContext(ctx, &agg, q, windowDays); err != nil {
		return Aggregate{}, domain.NewStorageFault("aggregate", err)
	}
	logger.SVCStats.LogAttrs(ctx, slog.LevelDebug, "aggregate",
		slog.String("event", "aggregate"),
		slog.Int("window_days", windowDays),
		slog.Int("count", agg.Count),
	)
	return agg, nil
}
