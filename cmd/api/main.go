package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	invitationRepo := repository.NewInvitationRepository(pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	cache := auth.NewAuthorizationCache(cfg.Auth.FreshnessWindow)
	trigger := auth.NewRefreshTrigger()
	relay := auth.NewTriggerRelay(trigger, redis.Handle(), cfg.Redis.TriggerChannel, logger)

	dispatcher := events.NewInMemoryDispatcher()
	auth.SubscribeTrigger(dispatcher, relay)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Domain, cfg.Auth.TokenValidity)
	authorizerOpts := []auth.AuthorizerOption{auth.WithRecorder(metrics)}
	if cfg.Auth.TestBypass {
		logger.Warn("test bypass enabled; every request is authorized", zap.String("identity", cfg.Auth.TestIdentity))
		authorizerOpts = append(authorizerOpts, auth.WithTestBypass(domain.Identity(cfg.Auth.TestIdentity)))
	}
	authorizer := auth.NewAuthorizer(tokens, cache, trigger, authorizerOpts...)

	refreshLoop := auth.NewRefreshLoop(cfg.Auth.RefreshInterval, auth.RefreshDependencies{
		Source:   userRepo,
		Cache:    cache,
		Trigger:  trigger,
		Logger:   logger,
		Recorder: metrics,
	})

	notificationService := service.NewNotificationService(logger, cfg.Notification)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       userRepo,
		InvitationRepo: invitationRepo,
		Tokens:         tokens,
		Dispatcher:     dispatcher,
		Sender:         notificationService,
		Logger:         logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, cache),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth),
		Invitations:    handlers.NewInvitationHandler(authService),
		Accounts:       handlers.NewAccountHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authorizer, cfg.Auth.CookieName),
		Gatherer:       registry,
	})

	g, gctx := errgroup.WithContext(ctx)
	worker.Start(gctx, g, logger,
		worker.Task{Name: "auth-cache-refresh", Run: refreshLoop.Run},
		worker.Task{Name: "refresh-trigger-relay", Run: relay.Listen},
	)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
	}
}
