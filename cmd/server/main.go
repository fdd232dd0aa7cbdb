// Package main implements the entry point for the Trek API server,
// which serves the tour catalog, reviews and user accounts over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/trekora/trek-api/internal/config"
	"github.com/trekora/trek-api/internal/platform/logger"
	"github.com/trekora/trek-api/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, connects the database, applies migrations,
// wires the application and serves until interrupted.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Setup(cfg.Server)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := migrations.Migrate(db); err != nil {
		return err
	}
	slog.Info("database migrations applied")

	app, err := newApplication(cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.serve(context.Background())
}
