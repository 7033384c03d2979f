package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/factecho/factecho/internal/app"
	"github.com/factecho/factecho/internal/articles"
	"github.com/factecho/factecho/internal/auth"
	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/categories"
	"github.com/factecho/factecho/internal/observability"
	"github.com/factecho/factecho/internal/permissions"
	"github.com/factecho/factecho/internal/platform/cache"
	"github.com/factecho/factecho/internal/platform/db"
	"github.com/factecho/factecho/internal/shared"
	"github.com/factecho/factecho/internal/token"
	"github.com/factecho/factecho/internal/users"
	"github.com/factecho/factecho/jobs"
	"github.com/factecho/factecho/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, view buffering disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	engine := authz.NewEngine(authz.DefaultPolicy(), tokens, authz.NewPGReverifier(pool), logger)

	auditLogger := shared.NewAuditLogger(pool)

	permissionsRepo := permissions.NewRepository(pool)
	permissionsService := permissions.NewService(permissionsRepo)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, permissionsService, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, permissionsService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(usersRepo, jobsClient, logger)
	authHandler := auth.NewHandler(logger, authService, tokens, cfg.IsProduction())

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	articlesRepo := articles.NewRepository(pool)
	articlesCache := articles.NewCache(redisClient, cfg.ArticleCacheTTL)
	articlesService := articles.NewService(articlesRepo, permissionsService, articlesCache, logger)
	articlesHandler := articles.NewHandler(logger, articlesService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Engine:            engine,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		ArticlesHandler:   articlesHandler,
		CategoriesHandler: categoriesHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
