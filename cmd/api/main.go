package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/localhands/marketplace-api/internal/api/http"
	"github.com/localhands/marketplace-api/internal/api/http/handlers"
	"github.com/localhands/marketplace-api/internal/auth"
	"github.com/localhands/marketplace-api/internal/config"
	"github.com/localhands/marketplace-api/internal/events"
	"github.com/localhands/marketplace-api/internal/observability"
	"github.com/localhands/marketplace-api/internal/persistence"
	"github.com/localhands/marketplace-api/internal/realtime"
	"github.com/localhands/marketplace-api/internal/repository"
	"github.com/localhands/marketplace-api/internal/search"
	"github.com/localhands/marketplace-api/internal/service"
	"github.com/localhands/marketplace-api/internal/validation"
	"github.com/localhands/marketplace-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.AllowHeaderIdentity {
		logger.Warn("X-User-ID header identity is enabled; any caller can act as any user")
	}

	if cfg.App.SeedEnabled {
		logger.Warn("demo seed endpoint is enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		userRepo    repository.UserRepository
		listingRepo repository.ListingRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pg.Pool)
		listingRepo = repository.NewListingRepository(pg.Pool)
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		listingRepo = store.Listings()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	validator := validation.New()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	hub := realtime.NewHub(cfg.Realtime, logger, metrics)
	var (
		publisher realtime.Publisher = hub
		relay     *realtime.RedisRelay
	)
	if cfg.Realtime.RelayEnabled {
		relay = realtime.NewRedisRelay(redis.Client, cfg.Realtime.RelayChannel, hub, logger)
		publisher = relay
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:  userRepo,
		Tokens:    tokens,
		Validator: validator,
	})
	listingService := service.NewListingService(service.ListingDependencies{
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Validator:   validator,
		Logger:      logger,
	})

	waitWorkers := worker.StartNotificationWorker(ctx, worker.NotificationWorkers{
		Notifications: service.NewNotificationService(dispatcher, logger, metrics),
		Notifier:      realtime.NewNotifier(dispatcher, publisher, logger, metrics),
		Hub:           hub,
		Relay:         relay,
	})

	app := httptransport.NewServer(httptransport.ServerConfig{
		Name:           cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		AllowOrigins:   cfg.App.AllowOrigins(),
	}, logger, metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, hub.Count),
		Auth:           handlers.NewAuthHandler(authService),
		Listings:       handlers.NewListingsHandler(listingService, search.NewEngine(listingRepo, logger)),
		Realtime:       handlers.NewRealtimeHandler(hub),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo, cfg.Auth.AllowHeaderIdentity),
		SeedEnabled:    cfg.App.SeedEnabled,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Bool("postgres", pg.Enabled()), zap.Bool("relay", relay != nil))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	waitWorkers()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
