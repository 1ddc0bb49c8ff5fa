// Package main loads the tariff grid into the catalog tables and optionally
// creates a first account.
package main

import (
	"context"
	"fmt"
	"os"

	"renodevis/internal/config"
	"renodevis/internal/core/apperror"
	"renodevis/internal/domain/auth"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/infrastructure/storage/postgres"
	"renodevis/internal/infrastructure/storage/postgres/auth_repo"
	"renodevis/internal/infrastructure/storage/postgres/catalog_repo"
	"renodevis/pkg/logger"
)

const defaultTariffsFile = "configs/tarifs.yaml"

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	path := cfg.TariffsFile
	if path == "" {
		path = defaultTariffsFile
	}
	if err := seedCatalog(ctx, txManager, path, log); err != nil {
		log.Fatalw("failed to seed catalog", "file", path, "error", err)
	}

	if email := os.Getenv("SEED_USER_EMAIL"); email != "" {
		if err := seedUser(ctx, txManager, cfg, email, log); err != nil {
			log.Fatalw("failed to seed user", "email", email, "error", err)
		}
	}

	log.Info("seeding completed")
}

func seedCatalog(ctx context.Context, txm *postgres.TxManager, path string, log *logger.Logger) error {
	tariffs, err := catalog.LoadTariffs(path)
	if err != nil {
		return err
	}
	snap, err := tariffs.Snapshot()
	if err != nil {
		return err
	}

	if err := catalog_repo.NewRepo(txm).Replace(ctx, snap); err != nil {
		return err
	}

	log.Infow("catalog replaced", "file", path, "entries", len(tariffs.Entries()))
	return nil
}

func seedUser(ctx context.Context, txm *postgres.TxManager, cfg *config.Config, email string, log *logger.Logger) error {
	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		return fmt.Errorf("SEED_USER_PASSWORD is required with SEED_USER_EMAIL")
	}

	service := auth.NewService(
		auth_repo.NewUserRepo(txm),
		txm,
		auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)),
		auth.DefaultServiceConfig(),
	)

	_, err := service.Register(ctx, auth.RegisterRequest{
		Email:    email,
		Password: password,
		Nom:      os.Getenv("SEED_USER_NAME"),
	})
	if apperror.IsCode(err, apperror.CodeConflict) {
		log.Infow("user already exists, skipping", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	log.Infow("user created", "email", email)
	return nil
}
