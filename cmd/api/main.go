package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace/internal/api/http"
	"github.com/spec-kit/marketplace/internal/api/http/handlers"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/config"
	"github.com/spec-kit/marketplace/internal/events"
	"github.com/spec-kit/marketplace/internal/observability"
	"github.com/spec-kit/marketplace/internal/persistence"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository"
	"github.com/spec-kit/marketplace/internal/repository/memrepo"
	"github.com/spec-kit/marketplace/internal/service"
	"github.com/spec-kit/marketplace/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}
	sessions := auth.NewSessions(auth.SessionsConfig{
		Codec:    codec,
		Secure:   cfg.App.IsProduction(),
		Logger:   logger.Named("session"),
		Recorder: metrics,
	})

	engine, err := policy.NewEngine(policy.WithLogger(logger.Named("policy")), policy.WithRecorder(metrics))
	if err != nil {
		logger.Fatal("failed to load route policy", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
		orderRepo   repository.OrderRepository
	)
	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		productRepo = repository.NewProductRepository(pool)
		orderRepo = repository.NewOrderRepository(pool)
		dependencies["postgres"] = pg
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memrepo.New()
		userRepo, productRepo, orderRepo = store.Users(), store.Products(), store.Orders()
	}

	var attempts repository.LoginAttemptRepository
	if redis.Enabled() {
		attempts = repository.NewLoginAttemptRepository(redis.Client)
		dependencies["redis"] = redis
	}

	dispatcher := events.NewBus()
	notifications := worker.StartNotificationWorker(dispatcher, service.NewNotificationService(logger.Named("notifications")), cfg.Notification.QueueSize, logger.Named("worker"))

	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:    userRepo,
		Attempts: attempts,
		Verifier: auth.NewBcryptVerifier(cfg.Auth.BcryptCost, logger.Named("credentials")),
		Codec:    codec,
		Logger:   logger.Named("auth"),
		Throttle: metrics,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	app := httptransport.NewServer(httptransport.ServerDependencies{
		Config:   cfg.App,
		Logger:   logger,
		Metrics:  metrics,
		Sessions: sessions,
		Policy:   engine,
		Auth:     authService,
		Products: service.NewProductService(productRepo, engine, logger.Named("products")),
		Orders:   service.NewOrderService(orderRepo, productRepo, engine, dispatcher, logger.Named("orders")),
		Admin:    service.NewAdminService(userRepo, orderRepo, engine, dispatcher, logger.Named("admin")),
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if err := notifications.Stop(drainCtx); err != nil {
		logger.Warn("notification drain", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
