package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/infrastructure/auth"
	"github.com/estate/listings/internal/infrastructure/cache"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/logger"
	"github.com/estate/listings/internal/infrastructure/store"
	"github.com/estate/listings/internal/infrastructure/telemetry"
	"github.com/estate/listings/internal/interfaces/http/middleware"
	"github.com/estate/listings/internal/interfaces/http/router"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

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
		_ = log.Sync()
	}()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting listings service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("version", version),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	// Telemetry comes first so the store and HTTP layers are traced
	providers, err := telemetry.Setup(startCtx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.Logs.IsEnabled() {
		log = logger.Tee(log, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level)))
	}

	repo, closeStore, err := store.Open(startCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open listing store", zap.Error(err))
	}
	defer closeStore()

	// One key/value store backs both the listing cache and the token blacklist
	kv, err := openKeyValueStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open key/value store", zap.Error(err))
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error("Error closing key/value store", zap.Error(err))
		}
	}()

	traced := telemetry.NewTracedRepository(repo, cfg.Store.Driver)
	var serviceRepo listing.Repository = traced
	if cfg.Cache.Enabled {
		serviceRepo = cache.NewCachedRepository(traced, kv, cfg.Cache.Key, cfg.Cache.TTL, log)
	}

	service := listingapp.NewService(serviceRepo, listingapp.NewView(cfg.App.SnapshotTTL), log)
	service.SetGenerator(listingapp.NewGenerator(cfg.App.SeedRandom))

	listingMetrics, err := telemetry.NewListingMetrics(providers.Meter.Meter(telemetry.ListingMeterName))
	if err != nil {
		log.Warn("Failed to create listing metrics", zap.Error(err))
	} else {
		service.SetMetrics(listingMetrics)
	}

	publisher, closePublisher, err := openPublisher(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer closePublisher()
	service.SetEventPublisher(publisher)

	if err := wireFloorPlans(startCtx, cfg, service, log); err != nil {
		log.Fatal("Failed to initialize floor plan storage", zap.Error(err))
	}

	// Warm the snapshot; a failure here is served as a stale empty set
	if _, err := service.Refresh(startCtx); err != nil {
		log.Warn("Initial listing fetch failed", zap.Error(err))
	}

	tokens := auth.NewJWTService(cfg.JWT)
	if cfg.JWT.Secret == "" {
		log.Warn("jwt.secret is empty, admin routes reject every token")
	}
	if cfg.Admin.PasswordHash == "" {
		log.Warn("admin.password_hash is empty, admin login is disabled")
	}

	server := router.New(router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        version,
		Production:     cfg.App.IsProduction(),
		TracingEnabled: providers.Tracer.IsEnabled(),
		HTTP:           cfg.HTTP,
	}, router.Deps{
		Service:       service,
		Store:         serviceRepo,
		Tokens:        tokens,
		Authenticator: auth.NewAuthenticator(cfg.Admin, tokens),
		Blacklist:     auth.NewTokenBlacklist(kv),
		Metrics:       middleware.NewHTTPMetrics(cfg.App.Name),
		Logger:        log,
	})
	defer server.Close()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        server.Handler(),
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
