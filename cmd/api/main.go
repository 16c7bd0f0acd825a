package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/roster-service/internal/api/http"
	"github.com/spec-kit/roster-service/internal/api/http/handlers"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/config"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/observability"
	"github.com/spec-kit/roster-service/internal/persistence"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
	"github.com/spec-kit/roster-service/internal/service"
	"github.com/spec-kit/roster-service/internal/worker"
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

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisConn := persistence.NewRedis(cfg.Redis, logger)
	defer redisConn.Close()

	var memberRepo repository.MemberRepository
	var groupRepo repository.GroupRepository
	if pool != nil {
		memberRepo = repository.NewMemberRepository(pool)
		groupRepo = repository.NewGroupRepository(pool)
	} else {
		latency := cfg.Store.SimulatedLatency()
		memberRepo = repository.NewMemoryMemberRepository(latency)
		groupRepo = repository.NewMemoryGroupRepository(latency)
	}

	var pendingRepo repository.PendingImportRepository
	if client := redisConn.ClientHandle(); client != nil {
		pendingRepo = repository.NewPendingImportRepository(client)
	} else {
		pendingRepo = repository.NewMemoryPendingImportRepository()
	}

	resolver := rbac.NewResolver(rbac.DefaultCatalog())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	memberService := service.NewMemberService(service.MemberDependencies{
		MemberRepo: memberRepo,
		GroupRepo:  groupRepo,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	groupService := service.NewGroupService(service.GroupDependencies{
		GroupRepo:  groupRepo,
		MemberRepo: memberRepo,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	importService := service.NewImportService(cfg.Import, service.ImportDependencies{
		MemberRepo:  memberRepo,
		GroupRepo:   groupRepo,
		PendingRepo: pendingRepo,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Session.TokenSecret, cfg.Session.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.Import.MaxUploadBytes) + 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn, metrics),
		Session:        handlers.NewSessionHandler(tokenManager),
		Members:        handlers.NewMembersHandler(memberService),
		Groups:         handlers.NewGroupsHandler(groupService),
		Imports:        handlers.NewImportsHandler(importService),
		AuthMiddleware: authMiddleware,
		Resolver:       resolver,
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
