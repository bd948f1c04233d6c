package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/salim0986/okr-production-sub000/internal/api/http"
	"github.com/salim0986/okr-production-sub000/internal/api/http/handlers"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/config"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/observability"
	"github.com/salim0986/okr-production-sub000/internal/persistence"
	"github.com/salim0986/okr-production-sub000/internal/policy"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	"github.com/salim0986/okr-production-sub000/internal/repository/memory"
	"github.com/salim0986/okr-production-sub000/internal/service"
	"github.com/salim0986/okr-production-sub000/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "okr-api",
		Short:         "Serve the OKR tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func runMigrate(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.UsesMemoryStore() {
		return errors.New("POSTGRES_DSN is required to migrate")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()
	return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
}

func runServe(parent context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memory.New()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	var publisher service.Publisher
	if redis != nil {
		publisher = redis
	}

	deps := service.Dependencies{
		Store:      store,
		Authorizer: policy.NewAuthorizer(store.Ownership(), logger),
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Logger:     logger,
		Clock:      func() time.Time { return time.Now().UTC() },
	}

	authService := service.NewAuthService(cfg.Auth, deps)
	dashboardService := service.NewDashboardService(cfg.Dashboard, deps)
	notificationService := service.NewNotificationService(deps, publisher, cfg.Redis.ChannelPrefix)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:          handlers.NewAuthHandler(authService),
		Organization:  handlers.NewOrganizationHandler(service.NewOrganizationService(deps), dashboardService),
		Teams:         handlers.NewTeamsHandler(service.NewTeamService(deps), dashboardService),
		Users:         handlers.NewUsersHandler(service.NewUserService(cfg.Auth.BcryptCost, deps)),
		Objectives:    handlers.NewObjectivesHandler(service.NewObjectiveService(deps)),
		CheckIns:      handlers.NewCheckInsHandler(service.NewCheckInService(deps)),
		Comments:      handlers.NewCommentsHandler(service.NewCommentService(deps)),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: auth.NewAuthMiddleware(
			authService.TokenManager(), store.Users(), store.Teams()),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete", zap.Any("metrics", metrics.Snapshot()))
	return nil
}
