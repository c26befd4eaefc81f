// Command seed loads per-year seeds from a YAML file into the SQLite database.
//
// Usage:
//
//	go run ./cmd/seed -file data/seeds.yaml -db data/igbo-calendar.db
//
// This tool:
// 1. Parses and validates the seed file
// 2. Creates/opens the SQLite database
// 3. Runs migrations to ensure schema is current
// 4. Upserts every seed in a single transaction
// 5. Drops cached builds of the seeded years
//
// The import is idempotent: seeding the same file twice leaves one row per year.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
)

func main() {
	// Parse command line flags
	seedPath := flag.String("file", "data/seeds.yaml", "Path to YAML seed file")
	dbPath := flag.String("db", "data/igbo-calendar.db", "Path to SQLite database")
	labelsPath := flag.String("labels", "", "YAML label registry used to validate market days")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(*seedPath, *dbPath, *labelsPath, logger); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed complete")
}

func run(seedPath, dbPath, labelsPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate seeds
	// =========================================================================
	registry := calendar.DefaultRegistry()
	if labelsPath != "" {
		r, err := calendar.LoadRegistry(labelsPath)
		if err != nil {
			return err
		}
		registry = r
	}

	logger.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	seeds, err := parseSeeds(data, registry)
	if err != nil {
		return err
	}
	logger.Info("parsed seeds", slog.Int("seeds", len(seeds)))

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Upsert in a transaction
	// =========================================================================
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		for i := range seeds {
			if err := tx.UpsertSeed(ctx, &seeds[i]); err != nil {
				return fmt.Errorf("seed year %d: %w", seeds[i].YearIndex, err)
			}
			logger.Debug("seeded year",
				slog.Int("year_index", seeds[i].YearIndex),
				slog.String("approx_start", seeds[i].ApproxStart),
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import seeds: %w", err)
	}

	// =========================================================================
	// Step 4: Invalidate cached builds and verify
	// =========================================================================
	var purged int64
	for _, s := range seeds {
		n, err := db.PurgeCachedYears(ctx, s.YearIndex)
		if err != nil {
			return fmt.Errorf("purge cache for %d: %w", s.YearIndex, err)
		}
		purged += n
	}

	total, err := db.CountSeeds(ctx)
	if err != nil {
		return fmt.Errorf("count seeds: %w", err)
	}

	elapsed := time.Since(startTime)
	logger.Info("seed verified",
		slog.Int("seeds_in_db", total),
		slog.Int64("cache_rows_purged", purged),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Seed Summary ===")
	fmt.Printf("Seeds imported:      %d\n", len(seeds))
	fmt.Printf("Seeds in database:   %d\n", total)
	fmt.Printf("Cache rows purged:   %d\n", purged)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
