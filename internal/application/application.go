// Package application assembles the dashboard process: configuration,
// connections, domain services, the HTTP server and the background worker.
package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/auth"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/catalog"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/chat"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraperconf"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cache"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cloudrun"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/columbus"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/persistence"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/scoring"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/server"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/worker"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/application/connectors"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/application/modules"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/middlewarex"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/probe"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

const Name = "zoektrends-dashboard"

// Version is stamped by the build.
var Version = "dev" //nolint:gochecknoglobals

func Run(ctx context.Context) error { //nolint:funlen
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// 2. Connections
	postgres := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := postgres.Client(ctx)
	defer postgres.Close(ctx)

	redis := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := redis.Client(ctx)
	defer redis.Close(ctx)

	tasks := &connectors.Asynq{
		Address:        cfg.Redis.Address,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DatabaseNumber: cfg.Redis.DatabaseNumber,
	}
	taskClient := tasks.Client(ctx)
	defer tasks.Close(ctx)

	if err = persistence.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("persistence.EnsureSchema: %w", err)
	}

	// 3. Repositories
	sessions := persistence.NewSessionRepository(db)
	conversations := persistence.NewConversationRepository(db)
	executions := persistence.NewExecutionRepository(db)

	// 4. Upstream clients
	masker := logx.NewSensitiveDataMasker()
	clientOpts := []httpx.Option{
		httpx.WithLogFieldMaxLen(cfg.HTTP.LogFieldMaxLen),
		httpx.WithSensitiveDataMasker(masker),
	}

	warehouseClient := warehouse.NewClient(cfg.Upstreams.Warehouse, clientOpts...)
	scoringClient := scoring.NewClient(cfg.Upstreams.Scoring, clientOpts...)
	columbusClient := columbus.NewClient(cfg.Upstreams.Columbus, clientOpts...)
	cloudRunClient := cloudrun.NewClient(
		cfg.Upstreams.CloudRun,
		cfg.Google,
		cloudrun.NewAuthenticator(),
		clientOpts...,
	)

	// 5. Services
	pageCache := cache.New(cfg.Dashboard.CacheBackend, redisClient)

	authService := auth.NewAuthService(sessions, conversations, cfg.Dashboard)
	catalogService := catalog.NewCatalogService(warehouseClient, scoringClient, columbusClient, pageCache, cfg.Dashboard)
	chatService := chat.NewChatService(columbusClient, warehouseClient, scoringClient, conversations, pageCache, cfg.Dashboard)
	configService := scraperconf.NewConfigService(warehouseClient, cfg.Dashboard.ConfigLockWindow)
	scraperService := scraper.NewScraperService(cloudRunClient, taskClient, executions, cfg.Upstreams.CloudRun)

	// 6. HTTP server
	pages, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("web.NewRenderer: %w", err)
	}

	dashboard := server.NewServer(
		server.NewAuthServer(authService, pages, cfg.Dashboard),
		server.NewDashboardServer(catalogService, chatService, pages, cfg.Dashboard, cfg.Google),
		server.NewConfigServer(configService, scraperService, pages),
		server.NewColumbusServer(chatService, pages, cfg.Upstreams.Columbus),
	)

	router := chi.NewRouter()
	router.Use(
		middlewarex.Recovery,
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		server.CSRFProtection(cfg.Dashboard),
		server.RequireSession(authService),
	)
	dashboard.RegisterRoutes(router)

	// 7. Background work
	watcher := worker.NewWatcher(cloudRunClient, executions, cfg.Worker)

	janitor := worker.NewJanitor(sessions, executions, cfg.Worker, cfg.Upstreams.CloudRun)
	if err = janitor.Start(ctx); err != nil {
		return fmt.Errorf("janitor.Start: %w", err)
	}
	defer janitor.Stop()

	// 8. Serve
	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{ //nolint:exhaustruct
		Addr:    cfg.HTTP.ListenAddress,
		Handler: router,
	})

	modules.ProbeServer{
		Name:          Name,
		Version:       Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		ReadyChecks: []probe.CheckFunc{
			func(ctx context.Context) error { return db.PingContext(ctx) },
			func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsListenAddress}.Run(ctx, g)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   cfg.Worker.Concurrency,
	}.Run(ctx, g, modules.AsynqQueues{scraper.Queue: 1}, watcher.Handler())

	if err = g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
