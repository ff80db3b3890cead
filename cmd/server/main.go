package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentdesk/backend/internal/application/financial"
	rentalapp "github.com/rentdesk/backend/internal/application/rental"
	"github.com/rentdesk/backend/internal/infrastructure/auth"
	"github.com/rentdesk/backend/internal/infrastructure/cache"
	"github.com/rentdesk/backend/internal/infrastructure/config"
	"github.com/rentdesk/backend/internal/infrastructure/event"
	"github.com/rentdesk/backend/internal/infrastructure/logger"
	"github.com/rentdesk/backend/internal/infrastructure/persistence"
	"github.com/rentdesk/backend/internal/infrastructure/realtime"
	"github.com/rentdesk/backend/internal/interfaces/http/handler"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
	"github.com/rentdesk/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting RentDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.GormLevelFromString(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := persistence.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize the cache store. With memory fallback enabled a Redis
	// outage degrades to per-process caching instead of failing startup.
	store, err := cache.NewStoreFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	},
		cache.WithFactoryLogger(log),
		cache.WithMemoryFallback(cfg.Cache.MemoryFallback),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize cache store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache store", zap.Error(err))
		}
	}()

	// Realtime change hub. Redis pub/sub carries change notifications
	// across instances; a single instance can run on the in-memory hub.
	var hub realtime.Hub
	redisHub, err := realtime.NewRedisChangeHub(
		fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		cfg.Redis.Password,
		cfg.Redis.DB,
		realtime.WithHubLogger(log),
	)
	if err != nil {
		if !cfg.Cache.MemoryFallback {
			log.Fatal("Failed to connect realtime hub", zap.Error(err))
		}
		log.Warn("Redis change hub unavailable, using in-memory hub", zap.Error(err))
		hub = realtime.NewMemoryChangeHub()
	} else {
		hub = redisHub
	}
	defer func() {
		if err := hub.Close(); err != nil {
			log.Error("Error closing change hub", zap.Error(err))
		}
	}()

	// Initialize repositories
	leaseRepo := persistence.NewGormLeaseRepository(db.DB)
	transactionRepo := persistence.NewGormRentTransactionRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)

	// Initialize event bus and the cache invalidation dispatcher
	eventBus := event.NewInMemoryEventBus(log)
	dispatcher := financial.NewInvalidationDispatcher(store, log)
	eventBus.Subscribe(dispatcher)
	log.Info("Invalidation dispatcher registered",
		zap.Strings("event_types", dispatcher.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	leaseService := rentalapp.NewLeaseService(leaseRepo, eventBus, hub, log)
	paymentService := rentalapp.NewPaymentService(transactionRepo, leaseRepo, eventBus, hub, log)
	expenseService := rentalapp.NewExpenseService(expenseRepo, eventBus, hub, log)
	statsService := financial.NewStatsService(leaseRepo, transactionRepo, expenseRepo, store,
		financial.WithTTLs(cfg.Cache.YearlyStatsTTL, cfg.Cache.MonthlyStatsTTL),
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	leaseHandler := handler.NewLeaseHandler(leaseService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	statsHandler := handler.NewFinancialStatsHandler(statsService, dispatcher)
	streamHandler := handler.NewStatsStreamHandler(hub, dispatcher, statsService, log)
	systemHandler := handler.NewSystemHandler(db, store)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, CORS.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// Rental domain (leases, rent transactions, expenses)
	rentalRoutes := router.NewDomainGroup("rentals", "/rentals")
	rentalRoutes.POST("/leases", leaseHandler.Create)
	rentalRoutes.GET("/leases", leaseHandler.List)
	rentalRoutes.GET("/leases/:id", leaseHandler.GetByID)
	rentalRoutes.POST("/leases/:id/activate", leaseHandler.Activate)
	rentalRoutes.POST("/leases/:id/terminate", leaseHandler.Terminate)
	rentalRoutes.PUT("/leases/:id/terms", leaseHandler.UpdateTerms)
	rentalRoutes.PUT("/leases/:id/admin-correct", leaseHandler.AdminCorrect)

	rentalRoutes.POST("/payments/confirm", paymentHandler.Confirm)
	rentalRoutes.POST("/payments/generate", paymentHandler.Generate)
	rentalRoutes.GET("/payments", paymentHandler.ListPeriod)

	rentalRoutes.POST("/expenses", expenseHandler.Record)
	rentalRoutes.GET("/expenses", expenseHandler.List)
	rentalRoutes.DELETE("/expenses/:id", expenseHandler.Delete)

	// Financial domain (cached KPI aggregates, realtime stream)
	financialRoutes := router.NewDomainGroup("financials", "/financials")
	financialRoutes.GET("/stats/monthly", statsHandler.Monthly)
	financialRoutes.GET("/stats/yearly", statsHandler.Yearly)
	financialRoutes.POST("/stats/invalidate", statsHandler.Invalidate)
	financialRoutes.GET("/stats/stream", streamHandler.Stream)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(rentalRoutes).
		Register(financialRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config. WriteTimeout stays zero: the
	// stats stream holds its connection open far longer than any
	// fixed write deadline would allow.
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
