// Package main applies the embedded database migrations.
//
// Usage: migrate [up|down|status|version]
package main

import (
	"context"
	"fmt"
	"os"

	"renodevis/internal/config"
	"renodevis/internal/infrastructure/storage/postgres"
	"renodevis/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	migrator, err := postgres.NewMigrator(pool)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer func() { _ = migrator.Close() }()

	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "version":
		var v int64
		if v, err = migrator.Version(ctx); err == nil {
			log.Infow("schema version", "version", v)
		}
	default:
		log.Fatalw("unknown command", "command", command, "usage", "migrate [up|down|status|version]")
	}
	if err != nil {
		log.Fatalw("migration failed", "command", command, "error", err)
	}
}
