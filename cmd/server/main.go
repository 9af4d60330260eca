// Package main implements the entry point for the Aula progress API
// server, which tracks lesson and activity progress for enrolled
// students and keeps their weighted grades consistent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/aulaops/aula-api/internal/config"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, reset, status, version, create) and exit")
	migrationName := flag.String("migration-name", "",
		"name of the migration to create (used with -migrate create)")
	flag.Parse()

	// A local .env is a development convenience; absence is normal in
	// deployed environments.
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env file")
	}

	cfg, err := loadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd, *migrationName); err != nil {
			slog.Error("Migration failed", "command", *migrateCmd, "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

// run wires the application dependencies and starts the HTTP server.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	redisClient, err := setupResultRedis(ctx, cfg, logger)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to set up redis: %w", err)
	}

	app, err := newApplication(ctx, cfg, logger, db, redisClient)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
