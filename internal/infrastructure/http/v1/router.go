// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"renodevis/internal/core/types"
	"renodevis/internal/domain/catalog"
	"renodevis/internal/infrastructure/http/v1/dto"
	"renodevis/internal/infrastructure/http/v1/handlers"
	"renodevis/internal/infrastructure/http/v1/middleware"
	"renodevis/pkg/logger"
)

// RouterConfig holds the router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	AuthService handlers.AuthService
	Quotes      QuoteService
	Invoices    handlers.InvoiceService

	// Catalog serves the reference data and prices drafts.
	Catalog catalog.Provider

	// DefaultVATRate applies to drafts sent without tva_taux.
	DefaultVATRate types.Money

	// Idempotency stores responses of keyed submissions. Nil disables
	// replay.
	Idempotency middleware.IdempotencyStore

	// AuthLimiter throttles /auth per client IP. Defaults to
	// middleware.NewAuthRateLimiter().
	AuthLimiter *middleware.IPRateLimiter

	// CORSOrigins lists allowed browser origins; empty allows all.
	CORSOrigins []string

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger

	// Mode is the gin mode (release, debug, test).
	Mode string
}

// QuoteService covers the quote endpoints and the draft save endpoint.
type QuoteService interface {
	handlers.QuoteService
	handlers.DraftSaver
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "" {
		cfg.Mode = gin.ReleaseMode
	}
	gin.SetMode(cfg.Mode)
	dto.RegisterValidators()

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.AuthLimiter == nil {
		cfg.AuthLimiter = middleware.NewAuthRateLimiter()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, base, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		var idem gin.HandlerFunc
		if cfg.Idempotency != nil {
			idem = middleware.Idempotency(cfg.Idempotency)
		}

		registerReferenceRoutes(protected, base, cfg)
		registerQuoteRoutes(protected, base, cfg, idem)
		registerInvoiceRoutes(protected, base, cfg, idem)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService)

	public := rg.Group("/auth")
	public.Use(cfg.AuthLimiter.RateLimit())
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.GET("/me", h.Me)
}

func registerReferenceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Catalog == nil {
		return
	}
	h := handlers.NewReferenceHandler(base, cfg.Catalog)

	refs := rg.Group("/references")
	refs.GET("/cuisine/types", h.Kitchens())
	refs.GET("/cuisine/plans-travail", h.Worktops())
	refs.GET("/cloisons", h.Partitions())
	refs.GET("/cloisons/options", h.PartitionOptions())
	refs.GET("/peintures", h.Paints())
	refs.GET("/parquets", h.Floorings())
	refs.GET("/parquets/poses", h.FlooringMethods())
	refs.GET("/extras", h.Extras)
	refs.GET("/services", h.Services())
}

func registerQuoteRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, idem gin.HandlerFunc) {
	if cfg.Quotes == nil {
		return
	}
	quotes := rg.Group("/quotes")

	if cfg.Catalog != nil {
		drafts := handlers.NewDraftHandler(base, cfg.Catalog, cfg.Quotes, cfg.DefaultVATRate)
		quotes.POST("/draft", drafts.Assemble)
		quotes.POST("/draft/totals", drafts.Totals)
		save := []gin.HandlerFunc{drafts.Save}
		if idem != nil {
			save = append([]gin.HandlerFunc{idem}, save...)
		}
		quotes.POST("/draft/save", save...)
	}

	h := handlers.NewQuoteHandler(base, cfg.Quotes)
	RegisterDocumentRoutes(quotes, h, idem)
	quotes.PUT("/:id", h.Update)
	quotes.PATCH("/:id/status", h.SetStatus)
}

func registerInvoiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, idem gin.HandlerFunc) {
	if cfg.Invoices == nil {
		return
	}
	h := handlers.NewInvoiceHandler(base, cfg.Invoices)
	invoices := rg.Group("/invoices")
	RegisterDocumentRoutes(invoices, h, idem)
	invoices.PUT("/:id/status", h.SetStatus)
}
