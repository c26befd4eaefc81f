// Package main is the entry point for the Igbo calendar API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/igbo-calendar-api/internal/almanac"
	"github.com/zapponejosh/igbo-calendar-api/internal/api"
	"github.com/zapponejosh/igbo-calendar-api/internal/calendar"
	"github.com/zapponejosh/igbo-calendar-api/internal/config"
	"github.com/zapponejosh/igbo-calendar-api/internal/database"
	"github.com/zapponejosh/igbo-calendar-api/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting igbo calendar API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
	)

	// Database
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", applied))

	// Calendar engine
	service, err := newService(cfg, db, log)
	if err != nil {
		return err
	}

	handlers := api.NewHandlers(db, service)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("igbo calendar API ready", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newService(cfg *config.Config, db *database.DB, log *slog.Logger) (*almanac.Service, error) {
	registry := calendar.DefaultRegistry()
	if cfg.LabelsPath != "" {
		r, err := calendar.LoadRegistry(cfg.LabelsPath)
		if err != nil {
			return nil, fmt.Errorf("load labels: %w", err)
		}
		registry = r
		log.Info("loaded label registry", slog.String("path", cfg.LabelsPath))
	}

	month, day, err := cfg.SeedMonthDay()
	if err != nil {
		return nil, err
	}

	builder := calendar.NewBuilder(
		calendar.WithRegistry(registry),
		calendar.WithLeapRule(cfg.LeapRule()),
		calendar.WithNewMoonWindow(cfg.NewMoonWindow),
	)

	return almanac.NewService(db, builder, almanac.Options{
		DefaultMarketDay: cfg.DefaultMarketDay,
		SeedMonth:        month,
		SeedDay:          day,
		CacheEnabled:     cfg.CacheEnabled,
	}, log), nil
}
