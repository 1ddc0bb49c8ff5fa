// Package main is the entry point for the renodevis API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"renodevis/internal/config"
	"renodevis/internal/domain/auth"
	"renodevis/internal/domain/documents/invoice"
	"renodevis/internal/domain/documents/quote"
	"renodevis/internal/infrastructure/cache"
	v1 "renodevis/internal/infrastructure/http/v1"
	"renodevis/internal/infrastructure/http/v1/handlers"
	"renodevis/internal/infrastructure/http/v1/middleware"
	"renodevis/internal/infrastructure/numerator"
	"renodevis/internal/infrastructure/storage/postgres"
	"renodevis/internal/infrastructure/storage/postgres/auth_repo"
	"renodevis/internal/infrastructure/storage/postgres/catalog_repo"
	"renodevis/internal/infrastructure/storage/postgres/document_repo"
	"renodevis/pkg/logger"
)

const (
	idempotencySweepInterval = time.Hour
	limiterSweepInterval     = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting renodevis server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to create audit store", "error", err)
	}
	numerators := numerator.NewFromTxManager(txManager)

	// --- Catalog ---
	checks := map[string]handlers.Pinger{"database": pool}

	var cacheOpts []cache.CatalogCacheOption
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer func() { _ = redisClient.Close() }()

		cacheOpts = append(cacheOpts, cache.WithRemote(
			cache.NewRedisSnapshotStore(redisClient, cache.DefaultSnapshotKey, cfg.CatalogCacheTTL),
		))
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info("redis catalog cache enabled")
	}

	catalogCache := cache.NewCatalogCache(catalog_repo.NewRepo(txManager), cfg.CatalogCacheTTL, cacheOpts...)
	catalogCache.Listen(ctx, pool.Pool, catalog_repo.ChangedChannel)
	defer catalogCache.Stop()

	if _, err := catalogCache.Load(ctx); err != nil {
		// The server still starts; drafts fail until the catalog is seeded.
		log.Warnw("catalog not loaded", "error", err)
	}

	// --- Services ---
	quoteService := quote.NewService(
		document_repo.NewQuoteRepo(txManager),
		numerators,
		txManager,
		auditStore,
		quote.Config{ValidityDays: cfg.QuoteValidityDays, VATRate: cfg.DefaultVATRate},
	)
	invoiceService := invoice.NewService(
		document_repo.NewInvoiceRepo(txManager),
		quoteService,
		numerators,
		txManager,
		auditStore,
	)

	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Router ---
	idempotency := postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL)
	authLimiter := middleware.NewAuthRateLimiter()

	mode := gin.ReleaseMode
	if cfg.IsDevelopment() {
		mode = gin.DebugMode
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		Quotes:         quoteService,
		Invoices:       invoiceService,
		Catalog:        catalogCache,
		DefaultVATRate: cfg.DefaultVATRate,
		Idempotency:    idempotency,
		AuthLimiter:    authLimiter,
		CORSOrigins:    cfg.CORSOrigins,
		HealthChecks:   checks,
		Mode:           mode,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		every(gctx, idempotencySweepInterval, func() {
			n, err := idempotency.CleanupExpired(gctx)
			if err != nil {
				log.Warnw("idempotency cleanup failed", "error", err)
				return
			}
			if n > 0 {
				log.Debugw("idempotency keys expired", "count", n)
			}
		})
		return nil
	})

	g.Go(func() error {
		every(gctx, limiterSweepInterval, func() {
			if n := authLimiter.Sweep(); n > 0 {
				log.Debugw("rate limiter visitors evicted", "count", n)
			}
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server stopped with error", "error", err)
		return
	}
	log.Info("server stopped")
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
