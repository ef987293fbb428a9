package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cashflowapp "github.com/profitpath/backend/internal/application/cashflow"
	invoicingapp "github.com/profitpath/backend/internal/application/invoicing"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	partnerapp "github.com/profitpath/backend/internal/application/partner"
	"github.com/profitpath/backend/internal/infrastructure/auth"
	"github.com/profitpath/backend/internal/infrastructure/cache"
	"github.com/profitpath/backend/internal/infrastructure/config"
	"github.com/profitpath/backend/internal/infrastructure/event"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/migration"
	"github.com/profitpath/backend/internal/infrastructure/persistence"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"github.com/profitpath/backend/internal/interfaces/http/handler"
	"github.com/profitpath/backend/internal/interfaces/http/middleware"
	"github.com/profitpath/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/profitpath/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			ProfitPath API
//	@version		1.0
//	@description	Invoicing, payment ledger and cashflow API for small businesses

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ProfitPath",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metricsCfg := telemetryCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	dbOpts := []persistence.DatabaseOption{persistence.WithGormLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		if cfg.Database.Driver == "sqlite" {
			tracingCfg.DBSystem = "sqlite"
		}
		dbOpts = append(dbOpts, persistence.WithPlugin(telemetry.NewDBTracingPlugin(tracingCfg, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := migrateSchema(db, &cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is optional; without it idempotency keys and locks stay in process
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	idempotency := cache.NewIdempotencyStore(redisClient)
	locker := cache.NewLocker(redisClient, cfg.Features.RedisLocks)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler, auditHandler.EventTypes()...)
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	eventBus.Subscribe(ledgerMetrics, ledgerMetrics.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	txScope := persistence.NewGormTransactionScope(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)

	reconciler := appledger.NewReconciler(txScope, locker, eventBus, log, appledger.Options{
		LockTTL:   cfg.Ledger.LockTTL,
		BatchSize: cfg.Ledger.ReconcileBatchSize,
	})
	partyService := partnerapp.NewPartyService(partyRepo, eventBus, log)
	documentService := invoicingapp.NewDocumentService(txScope, partyRepo, reconciler, eventBus,
		invoicingapp.TaxSettings{
			HomeStateCode:  cfg.Tax.HomeStateCode,
			RoundOffPlaces: cfg.Tax.RoundOffPlaces,
		}, log)
	paymentService := appledger.NewPaymentService(reconciler, idempotency,
		appledger.PaymentFeatures{
			AllowOverpayment: cfg.Features.AllowOverpayment,
			LegacyDelete:     cfg.Features.LegacyPaymentDelete,
		}, cfg.Ledger.IdempotencyTTL, log)
	cashflowService := cashflowapp.NewService(txScope, log, cashflowapp.Options{
		MaxRetries:   cfg.Ledger.CashflowMaxRetries,
		RetryBackoff: cfg.Ledger.CashflowRetryBackoff,
		MaxRangeDays: cfg.Ledger.CashflowMaxRangeDays,
	})

	if cfg.Features.EagerReconcileOnStartup {
		report, err := reconciler.ReconcileStale(ctx)
		if err != nil {
			log.Error("Startup reconcile failed", zap.Error(err))
		} else {
			log.Info("Startup reconcile finished",
				zap.Int("scanned", report.Scanned),
				zap.Int("reconciled", report.Reconciled),
				zap.Int("failed", report.Failed),
			)
		}
	}

	// HTTP
	middleware.SetupValidator()

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		rateLimiter = middleware.NewRateLimiter(serverCtx, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		SwaggerEnabled: cfg.Swagger.Enabled,
		AdminRole:      cfg.JWT.AdminRole,
		JWTService:     auth.NewJWTService(cfg.JWT),
		Meter:          meter,
		RateLimiter:    rateLimiter,
		Logger:         log,
	}, router.Handlers{
		System:   handler.NewSystemHandler(db, version),
		Party:    handler.NewPartyHandler(partyService),
		Document: handler.NewDocumentHandler(documentService, reconciler),
		Payment:  handler.NewPaymentHandler(paymentService),
		Cashflow: handler.NewCashflowHandler(cashflowService),
		Tax:      handler.NewTaxHandler(documentService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopServer()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema brings the schema up to date. SQLite databases are created
// from the gorm models; Postgres runs the SQL migrations when auto migrate
// is on.
func migrateSchema(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver == "sqlite" {
		return persistence.AutoMigrate(db.DB)
	}
	if !cfg.AutoMigrate {
		return nil
	}
	sqlDB, err := db.SQLDB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, cfg.MigrationsPath, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool.
	return m.Up()
}
