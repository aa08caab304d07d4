package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campushelp/helpdesk-service/internal/api/http"
	"github.com/campushelp/helpdesk-service/internal/api/http/handlers"
	"github.com/campushelp/helpdesk-service/internal/auth"
	"github.com/campushelp/helpdesk-service/internal/config"
	"github.com/campushelp/helpdesk-service/internal/events"
	"github.com/campushelp/helpdesk-service/internal/observability"
	"github.com/campushelp/helpdesk-service/internal/persistence"
	"github.com/campushelp/helpdesk-service/internal/repository"
	"github.com/campushelp/helpdesk-service/internal/service"
	"github.com/campushelp/helpdesk-service/internal/worker"
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

	var (
		pg          *persistence.Postgres
		userRepo    repository.UserRepository
		ticketRepo  repository.TicketRepository
		commentRepo repository.CommentRepository
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; records will not survive a restart")
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		ticketRepo = store.Tickets()
		commentRepo = store.Comments()
	default:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		commentRepo = repository.NewCommentRepository(pool)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:           handlers.NewTicketsHandler(ticketService),
		Stats:             handlers.NewStatsHandler(ticketService),
		Staff:             handlers.NewStaffHandler(ticketService),
		AuthMiddleware:    authMiddleware,
		TicketCreateLimit: httptransport.TicketCreateRateLimit(redis, cfg.RateLimit.TicketsPerHour, logger),
		ProvisionGuard:    auth.RequireProvisionKey(cfg.Auth.ProvisionKeyHash),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
