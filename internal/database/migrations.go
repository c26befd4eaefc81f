package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1YearSeeds,
	2: migrationV2YearCache,
}

// migrationV1YearSeeds stores the approximate start date chosen for each
// Igbo year. The engine aligns this seed to the nearest new moon, so the
// seed only needs to be within a few days of the observed new moon.
const migrationV1YearSeeds = `
CREATE TABLE IF NOT EXISTS year_seeds (
    -- Igbo year index, e.g. 2025
    year_index INTEGER PRIMARY KEY,

    -- Approximate Gregorian start date, YYYY-MM-DD
    approx_start TEXT NOT NULL CHECK (length(approx_start) = 10),

    -- Market day of the first day of the year; NULL uses the server default
    market_anchor TEXT,

    notes TEXT,

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2YearCache memoises built years. The builder is deterministic,
// so a row is valid for as long as its cache key (inputs plus rule
// parameters) is unchanged. Rows are purged when a year's seed changes.
const migrationV2YearCache = `
CREATE TABLE IF NOT EXISTS year_cache (
    cache_key TEXT PRIMARY KEY,
    year_index INTEGER NOT NULL,

    -- JSON encoding of the built year
    payload TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_year_cache_year_index
    ON year_cache(year_index);
`
