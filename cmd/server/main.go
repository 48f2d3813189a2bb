package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	contentapp "github.com/cms/backend/internal/application/content"
	orderingapp "github.com/cms/backend/internal/application/ordering"
	"github.com/cms/backend/internal/domain/content"
	"github.com/cms/backend/internal/infrastructure/cache"
	"github.com/cms/backend/internal/infrastructure/config"
	"github.com/cms/backend/internal/infrastructure/logger"
	"github.com/cms/backend/internal/infrastructure/persistence"
	"github.com/cms/backend/internal/infrastructure/telemetry"
	"github.com/cms/backend/internal/interfaces/http/handler"
	"github.com/cms/backend/internal/interfaces/http/middleware"
	"github.com/cms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/cms/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			CMS Content API
//	@version		1.0
//	@description	Admin API for hand-ordered site content: friend links, corporate honors, product and solution pages.

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

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := cfg.Telemetry

	providers, err := telemetry.Start(ctx, telemetry.Config{
		Endpoint:        telemetryCfg.CollectorEndpoint,
		Insecure:        telemetryCfg.Insecure,
		ServiceName:     telemetryCfg.ServiceName,
		ServiceVersion:  version,
		Traces:          telemetryCfg.Enabled,
		SamplingRatio:   telemetryCfg.SamplingRatio,
		Metrics:         telemetryCfg.Enabled && telemetryCfg.MetricsEnabled,
		MetricsInterval: telemetryCfg.MetricsInterval,
		Logs:            telemetryCfg.Enabled && telemetryCfg.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	// OTLP log export tees into the console logger
	if providers.LogsEnabled() {
		log, err = logger.New(logCfg, logger.WithCore(providers.ZapCore(logger.ParseLevel(cfg.Log.Level))))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	meter := providers.Meter("cms-backend")

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Content tables migrated")
	}

	if telemetryCfg.Enabled && telemetryCfg.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = telemetryCfg.DBLogFullSQL
		if cfg.Database.Driver == config.DriverSQLite {
			dbTracing.DBSystem = "sqlite"
		}
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Scope locks serialise reorders of one scope across instances
	locker, err := cache.NewScopeLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(cfg.Ordering.LockBackend)
	if err != nil {
		log.Fatal("Failed to create scope locker", zap.Error(err))
	}
	defer func() {
		if err := locker.Close(); err != nil {
			log.Error("Error closing scope locker", zap.Error(err))
		}
	}()

	reorderMetrics, err := telemetry.NewReorderMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create reorder metrics", zap.Error(err))
	}

	// Repositories
	friendLinkRepo := persistence.NewFriendLinkRepository(db.DB)
	corporateHonorRepo := persistence.NewCorporateHonorRepository(db.DB)
	productPageRepo := persistence.NewProductPageRepository(db.DB)
	solutionPageRepo := persistence.NewSolutionPageRepository(db.DB)

	// Application services
	orderingService := orderingapp.NewService(locker, reorderMetrics, log,
		orderingapp.Config{
			LockTTL:      cfg.Ordering.LockTTL,
			MaxBatchSize: cfg.Ordering.MaxBatchSize,
		},
		orderingapp.Resource{Name: handler.ResourceFriendLinks, Store: friendLinkRepo},
		orderingapp.Resource{Name: handler.ResourceCorporateHonors, Store: corporateHonorRepo},
		orderingapp.Resource{Name: handler.ResourceProductPages, Keyed: true, Store: productPageRepo},
		orderingapp.Resource{Name: handler.ResourceSolutionPages, Keyed: true, Store: solutionPageRepo},
	)
	log.Info("Ordered resources registered", zap.Strings("resources", orderingService.Resources()))

	// HTTP handlers
	orderingHandler := handler.NewOrderingHandler(orderingService)
	friendLinkHandler := handler.NewFriendLinkHandler(contentapp.NewFriendLinkService(friendLinkRepo), orderingService)
	corporateHonorHandler := handler.NewCorporateHonorHandler(contentapp.NewCorporateHonorService(corporateHonorRepo), orderingService)
	productPageHandler := handler.NewPageHandler(content.PageKindProduct, contentapp.NewPageService(productPageRepo), orderingService)
	solutionPageHandler := handler.NewPageHandler(content.PageKindSolution, contentapp.NewPageService(solutionPageRepo), orderingService)
	healthHandler := handler.NewHealthHandler(db, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id, recovery, access log, security headers,
	// CORS, body limit, rate limit, tracing, metrics.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.Requests = int64(cfg.HTTP.RateLimitRequests)
		rateCfg.Window = cfg.HTTP.RateLimitWindow
		if cfg.HTTP.RateLimitStore == config.LockBackendRedis {
			rateRedis := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer func() { _ = rateRedis.Close() }()
			rateCfg.Redis = rateRedis
		}
		rateLimit, err := middleware.RateLimit(rateCfg)
		if err != nil {
			log.Fatal("Failed to create rate limiter", zap.Error(err))
		}
		engine.Use(rateLimit)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.String("store", cfg.HTTP.RateLimitStore),
		)
	}

	if providers.TracingEnabled() {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanEnricher())
	}
	if providers.MetricsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
		engine.Use(httpMetrics)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler.Check)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: cfg.Swagger.Enabled}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if cfg.JWT.Enabled {
		jwtCfg := middleware.DefaultJWTConfig(cfg.JWT.Secret)
		jwtCfg.Issuer = cfg.JWT.Issuer
		jwtCfg.Logger = log
		r.Use(middleware.JWTAuth(jwtCfg))
	} else {
		log.Warn("JWT authentication disabled, the content API is open")
	}

	r.Register(router.NewContentGroup(orderingHandler,
		friendLinkHandler,
		corporateHonorHandler,
		productPageHandler,
		solutionPageHandler,
	))
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	_ = providers.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}
