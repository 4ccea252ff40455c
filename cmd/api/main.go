package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/senelec/reclamations-api/internal/api/http"
	"github.com/senelec/reclamations-api/internal/api/http/handlers"
	"github.com/senelec/reclamations-api/internal/auth"
	"github.com/senelec/reclamations-api/internal/config"
	"github.com/senelec/reclamations-api/internal/events"
	"github.com/senelec/reclamations-api/internal/mailer"
	"github.com/senelec/reclamations-api/internal/observability"
	"github.com/senelec/reclamations-api/internal/persistence"
	"github.com/senelec/reclamations-api/internal/repository"
	"github.com/senelec/reclamations-api/internal/repository/memstore"
	"github.com/senelec/reclamations-api/internal/service"
	"github.com/senelec/reclamations-api/internal/worker"
)

type repositories struct {
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
}

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
		repos          repositories
		postgresHealth handlers.Pinger
	)
	db, err := persistence.OpenDatabase(ctx, cfg.Postgres, cfg.App.Name, logger)
	switch {
	case errors.Is(err, persistence.ErrNoDSN):
		logger.Warn("POSTGRES_DSN not set; using in-memory store, data is lost on restart")
		store := memstore.New(repository.SystemClock)
		repos = repositories{
			accounts:   store.Accounts(),
			categories: store.Categories(),
			tickets:    store.Tickets(),
			history:    store.History(),
		}
	case err != nil:
		logger.Fatal("failed to open postgres", zap.Error(err))
	default:
		defer db.Close()
		repos = repositories{
			accounts:   repository.NewAccountRepository(db.Pool, repository.SystemClock),
			categories: repository.NewCategoryRepository(db.Pool, repository.SystemClock),
			tickets:    repository.NewTicketRepository(db.Pool, repository.SystemClock),
			history:    repository.NewTicketHistoryRepository(db.Pool),
		}
		postgresHealth = db
	}

	redis, err := persistence.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to configure redis", zap.Error(err))
	}
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	mail, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("failed to configure mailer", zap.Error(err))
	}

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Mailer:     mail,
		Accounts:   repos.accounts,
		Tickets:    repos.tickets,
		Metrics:    metrics,
		Logger:     logger,
	})
	jobs := worker.NewPool(cfg.Worker.Count, cfg.Worker.QueueSize, cfg.Worker.JobTimeout(), logger)
	worker.StartNotificationWorker(ctx, jobs, notificationService)
	defer jobs.Stop()

	sessions := auth.NewSessionManager(
		auth.NewRedisSessionStore(redis.Client),
		auth.NewTokenManager(cfg.Auth.JWTSecret),
		cfg.Auth.SessionTTL(),
		nil,
	)

	authService := service.NewAuthService(service.AuthDependencies{
		Accounts:      repos.accounts,
		Sessions:      sessions,
		Notifications: notificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	accountService := service.NewAccountService(service.AccountDependencies{
		Accounts:      repos.accounts,
		Notifications: notificationService,
		Dispatcher:    dispatcher,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	categoryService := service.NewCategoryService(repos.categories)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.tickets,
		CategoryRepo: repos.categories,
		HistoryRepo:  repos.history,
		Dispatcher:   dispatcher,
	})
	statsService := service.NewStatsService(repos.accounts, repos.categories, repos.tickets)

	authMiddleware := auth.NewAuthMiddleware(sessions, repos.accounts, cfg.Auth.CookieName, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgresHealth, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}),
		Users:          handlers.NewUsersHandler(accountService),
		Dashboard:      handlers.NewDashboardHandler(statsService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
