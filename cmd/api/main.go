package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/facilitas/chamado-service/internal/api/http"
	"github.com/facilitas/chamado-service/internal/api/http/handlers"
	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/config"
	"github.com/facilitas/chamado-service/internal/events"
	"github.com/facilitas/chamado-service/internal/observability"
	"github.com/facilitas/chamado-service/internal/persistence"
	"github.com/facilitas/chamado-service/internal/realtime"
	"github.com/facilitas/chamado-service/internal/repository"
	"github.com/facilitas/chamado-service/internal/service"
	"github.com/facilitas/chamado-service/internal/worker"
)

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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	sectorRepo := repository.NewSectorRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	policyRepo := repository.NewDeadlinePolicyRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, userRepo, sectorRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		SectorRepo:  sectorRepo,
		UserRepo:    userRepo,
		PolicyRepo:  policyRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,

		DefaultDurationMinutes: cfg.SLA.DefaultDurationMinutes,
	})
	sectorService := service.NewSectorService(sectorRepo, userRepo)
	policyService := service.NewDeadlinePolicyService(policyRepo, sectorRepo)
	dashboardService := service.NewDashboardService(ticketRepo, redis.Client, cfg.Dashboard.CacheTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	hub := realtime.NewHub(logger)
	hub.RegisterHandlers(dispatcher)
	defer hub.Shutdown()

	sweeper := worker.NewDeadlineSweeper(ticketService, redis.Client, metrics, logger, cfg.SLA)
	go sweeper.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, sectorRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Sectors:        handlers.NewSectorsHandler(sectorService),
		Policies:       handlers.NewPoliciesHandler(policyService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Hub:            hub,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
