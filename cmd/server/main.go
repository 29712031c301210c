package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcatalog "github.com/comfort/backend/internal/application/catalog"
	appfinance "github.com/comfort/backend/internal/application/finance"
	appinventory "github.com/comfort/backend/internal/application/inventory"
	apptrade "github.com/comfort/backend/internal/application/trade"
	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/infrastructure/cache"
	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/comfort/backend/internal/infrastructure/logger"
	"github.com/comfort/backend/internal/infrastructure/persistence"
	"github.com/comfort/backend/internal/infrastructure/telemetry"
	"github.com/comfort/backend/internal/interfaces/http/handler"
	"github.com/comfort/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting trading core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThresh),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.DBTraceEnabled && tp.Enabled() {
		if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Database.SlowQueryThresh,
			DBSystem:        cfg.Database.Driver,
		}, tp.Provider(), log); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}

	// Repositories
	items := persistence.NewGormItemRepository(db.DB)
	brackets := persistence.NewGormBracketStore(db.DB)
	ledger := appfinance.NewLedger(
		persistence.NewGormAccountRepository(db.DB),
		persistence.NewGormGLEntryRepository(db.DB),
		nil,
		log.Named("ledger"),
	)
	stock := appinventory.NewStock(persistence.NewGormStockEntryRepository(db.DB), nil, log.Named("stock"))

	// sqlite is a development store: its schema comes from the models, not
	// from cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create schema", zap.Error(err))
		}
		if err := ledger.InitializeAccounts(context.Background(), finance.DefaultChart); err != nil {
			log.Fatal("Failed to create chart of accounts", zap.Error(err))
		}
	}

	// Optional Redis-backed item cache
	var (
		itemCatalog catalog.ItemRepository = items
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		if cfg.Catalog.CacheEnabled {
			itemCatalog = cache.NewRedisItemCatalog(items, redisClient, cfg.Catalog.CacheTTL,
				cache.WithLogger(log.Named("item-cache")),
			)
			log.Info("Item catalog cache enabled", zap.Duration("ttl", cfg.Catalog.CacheTTL))
		}
	}

	// Application services
	deps := apptrade.Dependencies{
		Scope:    persistence.NewGormTransactionScope(db.DB),
		Catalog:  itemCatalog,
		Brackets: brackets,
		Accounts: finance.DefaultAccountSettings().WithOverrides(cfg.Finance.Accounts),
		Logger:   log.Named("trade"),
	}
	salesOrderService := apptrade.NewSalesOrderService(deps)
	purchaseOrderService := apptrade.NewPurchaseOrderService(deps)
	salesReturnService := apptrade.NewSalesReturnService(deps)
	purchaseReturnService := apptrade.NewPurchaseReturnService(deps)
	itemService := appcatalog.NewItemService(itemCatalog, log.Named("catalog"))
	commissionService := appcatalog.NewCommissionService(brackets, log.Named("catalog"))

	// Readiness probes
	checks := map[string]handler.Pinger{"database": handler.PingFunc(db.Ping)}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineOptions{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        tp.Enabled(),
		TracerProvider: tp.Provider(),
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(
			handler.NewSalesOrderHandler(salesOrderService),
			handler.NewPurchaseOrderHandler(purchaseOrderService),
			handler.NewSalesReturnHandler(salesReturnService),
			handler.NewPurchaseReturnHandler(purchaseReturnService),
			handler.NewFinanceHandler(ledger, stock),
			handler.NewCatalogHandler(itemService, commissionService),
			handler.NewSystemHandler(version, checks),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
