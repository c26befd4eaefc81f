package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	// Try RFC3339 format first (with timezone)
	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return &t
	}

	// Try SQLite datetime format (no timezone)
	t, err = time.Parse("2006-01-02 15:04:05", ns.String)
	if err == nil {
		return &t
	}

	return nil
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// =============================================================================
// Year Seed Queries
// =============================================================================

// UpsertSeed inserts or replaces the seed for a year.
//
// Idempotent: saving the same seed twice leaves one row. created_at is kept
// on update.
func (db *DB) UpsertSeed(ctx context.Context, seed *YearSeed) error {
	return upsertSeed(ctx, db.DB, seed)
}

// UpsertSeed inserts or replaces a seed inside the transaction.
func (tx *Tx) UpsertSeed(ctx context.Context, seed *YearSeed) error {
	return upsertSeed(ctx, tx.Tx, seed)
}

func upsertSeed(ctx context.Context, q querier, seed *YearSeed) error {
	query := `
		INSERT INTO year_seeds (year_index, approx_start, market_anchor, notes, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(year_index) DO UPDATE SET
			approx_start = excluded.approx_start,
			market_anchor = excluded.market_anchor,
			notes = excluded.notes,
			updated_at = datetime('now')
	`

	_, err := q.ExecContext(ctx, query,
		seed.YearIndex,
		seed.ApproxStart,
		nullIfEmpty(seed.MarketAnchor),
		seed.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert year seed: %w", err)
	}

	return nil
}

const seedColumns = `year_index, approx_start, market_anchor, notes, created_at, updated_at`

// scanSeed reads one year_seeds row.
func scanSeed(scan func(dest ...any) error) (*YearSeed, error) {
	var seed YearSeed
	var marketAnchor, notes, createdAtStr, updatedAtStr sql.NullString

	if err := scan(
		&seed.YearIndex,
		&seed.ApproxStart,
		&marketAnchor,
		&notes,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return nil, err
	}

	seed.MarketAnchor = marketAnchor.String
	if notes.Valid {
		seed.Notes = &notes.String
	}
	if t := parseTimestamp(createdAtStr); t != nil {
		seed.CreatedAt = *t
	}
	if t := parseTimestamp(updatedAtStr); t != nil {
		seed.UpdatedAt = *t
	}

	return &seed, nil
}

// GetSeed retrieves the seed for a year.
// Returns ErrNotFound if no seed is stored.
func (db *DB) GetSeed(ctx context.Context, yearIndex int) (*YearSeed, error) {
	query := `SELECT ` + seedColumns + ` FROM year_seeds WHERE year_index = ?`

	seed, err := scanSeed(db.QueryRowContext(ctx, query, yearIndex).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query year seed: %w", err)
	}

	return seed, nil
}

// ListSeeds returns all stored seeds ordered by year.
// Returns an empty slice when none are stored.
func (db *DB) ListSeeds(ctx context.Context) ([]YearSeed, error) {
	query := `SELECT ` + seedColumns + ` FROM year_seeds ORDER BY year_index ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query year seeds: %w", err)
	}
	defer rows.Close()

	seeds := []YearSeed{}
	for rows.Next() {
		seed, err := scanSeed(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan year seed row: %w", err)
		}
		seeds = append(seeds, *seed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate year seed rows: %w", err)
	}

	return seeds, nil
}

// DeleteSeed removes the seed for a year.
// Returns ErrNotFound if no seed is stored.
func (db *DB) DeleteSeed(ctx context.Context, yearIndex int) error {
	result, err := db.ExecContext(ctx, `DELETE FROM year_seeds WHERE year_index = ?`, yearIndex)
	if err != nil {
		return fmt.Errorf("delete year seed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CountSeeds returns the number of stored seeds.
func (db *DB) CountSeeds(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM year_seeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count year seeds: %w", err)
	}
	return count, nil
}

// =============================================================================
// Year Cache Queries
// =============================================================================

// GetCachedYear returns the stored payload for a cache key.
// Returns ErrNotFound on a miss.
func (db *DB) GetCachedYear(ctx context.Context, key string) (*CachedYear, error) {
	query := `
		SELECT cache_key, year_index, payload, created_at
		FROM year_cache
		WHERE cache_key = ?
	`

	var cached CachedYear
	var payload string
	var createdAtStr sql.NullString

	err := db.QueryRowContext(ctx, query, key).Scan(
		&cached.Key,
		&cached.YearIndex,
		&payload,
		&createdAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query cached year: %w", err)
	}

	cached.Payload = []byte(payload)
	if t := parseTimestamp(createdAtStr); t != nil {
		cached.CreatedAt = *t
	}

	return &cached, nil
}

// PutCachedYear stores a payload under key, replacing any previous entry.
func (db *DB) PutCachedYear(ctx context.Context, key string, yearIndex int, payload []byte) error {
	query := `
		INSERT INTO year_cache (cache_key, year_index, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			year_index = excluded.year_index,
			payload = excluded.payload,
			created_at = datetime('now')
	`

	if _, err := db.ExecContext(ctx, query, key, yearIndex, string(payload)); err != nil {
		return fmt.Errorf("store cached year: %w", err)
	}

	return nil
}

// PurgeCachedYears removes every cached build of a year and returns how
// many rows were deleted.
func (db *DB) PurgeCachedYears(ctx context.Context, yearIndex int) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM year_cache WHERE year_index = ?`, yearIndex)
	if err != nil {
		return 0, fmt.Errorf("purge cached years: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}

	return rows, nil
}

// CountCachedYears returns the number of cached builds.
func (db *DB) CountCachedYears(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM year_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cached years: %w", err)
	}
	return count, nil
}
