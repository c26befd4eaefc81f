package database

import "time"

// YearSeed is the stored starting point for one Igbo year.
type YearSeed struct {
	YearIndex    int       `json:"year_index"`
	ApproxStart  string    `json:"approx_start"`            // YYYY-MM-DD
	MarketAnchor string    `json:"market_anchor,omitempty"` // empty uses the server default
	Notes        *string   `json:"notes"`                   // nullable
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CachedYear is a memoised build result.
type CachedYear struct {
	Key       string    `json:"cache_key"`
	YearIndex int       `json:"year_index"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
