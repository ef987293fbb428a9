package router

import (
	"github.com/gin-gonic/gin"
	"github.com/profitpath/backend/internal/infrastructure/auth"
	"github.com/profitpath/backend/internal/infrastructure/config"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/interfaces/http/handler"
	"github.com/profitpath/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	System   *handler.SystemHandler
	Party    *handler.PartyHandler
	Document *handler.DocumentHandler
	Payment  *handler.PaymentHandler
	Cashflow *handler.CashflowHandler
	Tax      *handler.TaxHandler
}

// EngineConfig holds everything NewEngine needs besides the handlers
type EngineConfig struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	SwaggerEnabled bool
	AdminRole      string
	JWTService     *auth.JWTService
	Meter          metric.Meter
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// NewEngine builds the gin engine with the global middleware stack and the
// /api/v1 routes.
//
// Middleware order:
//  1. Recovery and Tracing wrap everything else
//  2. RequestID, request logging, security headers, CORS, body limit, metrics
//  3. /api/v1 only: JWT, span attributes, per-tenant rate limit
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(middleware.SpanErrorMarker())

	engine.GET("/health", h.System.Health)
	if cfg.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(middleware.DefaultJWTConfig(cfg.JWTService, log)))
	r.Use(middleware.TracingAttributeInjector())
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	r.Register(systemRoutes(h.System)).
		Register(partyRoutes(h.Party)).
		Register(documentRoutes(h.Document, h.Payment)).
		Register(paymentRoutes(h.Payment, cfg.AdminRole)).
		Register(cashflowRoutes(h.Cashflow)).
		Register(taxRoutes(h.Tax))
	r.Setup()

	return engine
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/health", h.Health)
	g.GET("/system/info", h.GetSystemInfo)
	return g
}

func partyRoutes(h *handler.PartyHandler) *DomainGroup {
	g := NewDomainGroup("parties", "/parties")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/roles", h.SetRoles)
	g.POST("/:id/activate", h.Activate)
	g.POST("/:id/deactivate", h.Deactivate)
	return g
}

func documentRoutes(h *handler.DocumentHandler, payments *handler.PaymentHandler) *DomainGroup {
	g := NewDomainGroup("documents", "/documents")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id/lines", h.UpdateLines)
	g.POST("/:id/cancel", h.Cancel)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/balance", h.GetBalance)
	g.POST("/:id/reconcile", h.Reconcile)
	g.POST("/:id/payments", payments.Record)
	g.GET("/:id/payments", payments.List)
	return g
}

func paymentRoutes(h *handler.PaymentHandler, adminRole string) *DomainGroup {
	g := NewDomainGroup("payments", "/payments")
	g.POST("/:id/reverse", middleware.RequireRole(adminRole), h.Reverse)
	g.DELETE("/:id", middleware.RequireRole(adminRole), h.DeleteLegacy)
	return g
}

func cashflowRoutes(h *handler.CashflowHandler) *DomainGroup {
	g := NewDomainGroup("cashflow", "/cashflow")
	g.GET("", h.Project)
	return g
}

func taxRoutes(h *handler.TaxHandler) *DomainGroup {
	g := NewDomainGroup("tax", "/tax")
	g.POST("/preview", h.Preview)
	return g
}
