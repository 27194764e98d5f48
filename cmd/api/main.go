package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/reparolabs/repairshop-service/internal/api/http"
	"github.com/reparolabs/repairshop-service/internal/api/http/handlers"
	"github.com/reparolabs/repairshop-service/internal/auth"
	"github.com/reparolabs/repairshop-service/internal/config"
	"github.com/reparolabs/repairshop-service/internal/events"
	"github.com/reparolabs/repairshop-service/internal/observability"
	"github.com/reparolabs/repairshop-service/internal/persistence"
	"github.com/reparolabs/repairshop-service/internal/ratelimit"
	"github.com/reparolabs/repairshop-service/internal/repository"
	"github.com/reparolabs/repairshop-service/internal/service"
	"github.com/reparolabs/repairshop-service/internal/worker"
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
	customerRepo := repository.NewCustomerRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	stockRepo := repository.NewStockRepository(pool)
	budgetRepo := repository.NewBudgetRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	webhookRepo := repository.NewWebhookRepository(pool)

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(redis.Client), cfg.RateLimit, logger)
	sessions := auth.NewRedisSessionStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		AuditRepo: auditRepo,
		Sessions:  sessions,
		Limiter:   limiter,
		Logger:    logger,
	})
	customerService := service.NewCustomerService(customerRepo, orderRepo)
	stockService := service.NewStockService(stockRepo, auditRepo, dispatcher, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:    orderRepo,
		CustomerRepo: customerRepo,
		UserRepo:     userRepo,
		Stock:        stockService,
		AuditRepo:    auditRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	budgetService := service.NewBudgetService(budgetRepo, customerRepo, dispatcher)
	userService := service.NewUserService(userRepo, auditRepo, cfg.Auth.BcryptCost, logger)
	webhookService := service.NewWebhookService(webhookRepo)

	webhookWorker := worker.NewWebhookWorker(webhookRepo, cfg.Webhook, logger)
	webhookWorker.Register(dispatcher)
	webhookWorker.Start()
	defer webhookWorker.Stop()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessions, userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.Development(), cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Stock:          handlers.NewStockHandler(stockService),
		Budgets:        handlers.NewBudgetsHandler(budgetService),
		Users:          handlers.NewUsersHandler(userService),
		Webhooks:       handlers.NewWebhooksHandler(webhookService),
		AuthMiddleware: authMiddleware,
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
