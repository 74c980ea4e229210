package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := setup()
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	db := mongo.Database()
	for name, ensure := range map[string]func(context.Context) error{
		"users":      func(ctx context.Context) error { return repository.EnsureUserIndexes(ctx, db) },
		"complaints": func(ctx context.Context) error { return repository.EnsureComplaintIndexes(ctx, db) },
		"feedback":   func(ctx context.Context) error { return repository.EnsureFeedbackIndexes(ctx, db) },
	} {
		if err := ensure(ctx); err != nil {
			logger.Fatal("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	historyRepo := repository.NewComplaintHistoryRepository(pg.PoolHandle())
	revokedRepo := repository.NewRevokedTokenRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, historyRepo, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		RevokedRepo: revokedRepo,
		Tokens:      tokens,
		Logger:      logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	feedbackService := service.NewFeedbackService(feedbackRepo, dispatcher, logger)
	analyticsService := service.NewAnalyticsService(complaintRepo, feedbackRepo)
	directoryService := service.NewDirectoryService(userRepo, complaintRepo, authService, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics,
			handlers.Dependency{Name: "mongo", Pinger: mongo},
			handlers.Dependency{Name: "postgres", Pinger: pg, Disabled: !pg.Enabled()},
			handlers.Dependency{Name: "redis", Pinger: redis, Disabled: !redis.Enabled()},
		),
		Auth:          handlers.NewAuthHandler(authService),
		Complaints:    handlers.NewComplaintsHandler(complaintService),
		Feedback:      handlers.NewFeedbackHandler(feedbackService),
		Admin:         handlers.NewAdminHandler(directoryService, analyticsService),
		Authenticator: auth.NewAuthenticator(tokens, userRepo, revokedRepo),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	return app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
