package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
)

// seedFile is the on-disk seed format:
//
//	seeds:
//	  - year: 2026
//	    approx_start: "2026-02-17"
//	    market_anchor: Orie
//	    notes: observed by the elders of Nri
type seedFile struct {
	Seeds []seedEntry `yaml:"seeds"`
}

type seedEntry struct {
	Year         int    `yaml:"year"`
	ApproxStart  string `yaml:"approx_start"`
	MarketAnchor string `yaml:"market_anchor"`
	Notes        string `yaml:"notes"`
}

// parseSeeds decodes and validates a seed file. Market days are
// canonicalised against the registry and duplicate years are rejected.
func parseSeeds(data []byte, registry calendar.Registry) ([]database.YearSeed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Seeds) == 0 {
		return nil, fmt.Errorf("seed file has no seeds")
	}

	cycle := calendar.NewMarketCycle(registry.MarketDays, "")
	seen := make(map[int]bool, len(f.Seeds))
	seeds := make([]database.YearSeed, 0, len(f.Seeds))

	for i, e := range f.Seeds {
		if e.Year < 1 {
			return nil, fmt.Errorf("seed %d: year must be positive, got %d", i+1, e.Year)
		}
		if seen[e.Year] {
			return nil, fmt.Errorf("seed %d: duplicate year %d", i+1, e.Year)
		}
		seen[e.Year] = true

		if _, err := calendar.ParseDateString(e.ApproxStart); err != nil {
			return nil, fmt.Errorf("seed %d (year %d): approx_start: %w", i+1, e.Year, err)
		}

		seed := database.YearSeed{
			YearIndex:   e.Year,
			ApproxStart: e.ApproxStart,
		}

		if anchor := strings.TrimSpace(e.MarketAnchor); anchor != "" {
			idx := cycle.IndexOf(anchor)
			if idx < 0 {
				return nil, fmt.Errorf("seed %d (year %d): unknown market day %q", i+1, e.Year, anchor)
			}
			seed.MarketAnchor = registry.MarketDays[idx]
		}

		if notes := strings.TrimSpace(e.Notes); notes != "" {
			seed.Notes = &notes
		}

		seeds = append(seeds, seed)
	}

	return seeds, nil
}
