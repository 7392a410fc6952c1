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
	"golang.org/x/sync/errgroup"

	"github.com/inkwell-app/inkwell/internal/app"
	"github.com/inkwell-app/inkwell/internal/audit"
	"github.com/inkwell-app/inkwell/internal/auth"
	"github.com/inkwell-app/inkwell/internal/observability"
	"github.com/inkwell-app/inkwell/internal/platform/cache"
	"github.com/inkwell-app/inkwell/internal/platform/db"
	"github.com/inkwell-app/inkwell/internal/posts"
	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
	"github.com/inkwell-app/inkwell/internal/users"
	"github.com/inkwell-app/inkwell/jobs"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	auditEmitter := shared.MultiAuditEmitter{
		shared.LogAuditEmitter{Logger: logger},
		jobs.AuditEmitter{Client: jobClient, Logger: logger},
	}

	codec := auth.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewSessionStore(redisClient, cfg.RefreshTokenTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, codec, sessions, auditEmitter)
	authHandler := auth.NewHandler(logger, authService, auth.CookieConfig{
		Name:   cfg.RefreshCookieName,
		Secure: cfg.IsProduction(),
		MaxAge: cfg.RefreshTokenTTL,
	})
	authMW := auth.Middleware{Codec: codec, Audit: auditEmitter, Logger: logger}

	rbacMW := rbac.Middleware{Matrix: rbac.DefaultMatrix(), Audit: auditEmitter, Logger: logger}

	postsRepo := posts.NewRepository(pool)
	postsService := posts.NewService(postsRepo, auditEmitter)
	ownership := rbac.NewOwnershipResolver(postsRepo, auditEmitter)
	postsHandler := posts.NewHandler(logger, postsService, rbacMW, ownership)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditEmitter)
	usersHandler := users.NewHandler(logger, usersService, rbacMW)

	auditService := audit.NewService(pool)
	auditHandler := audit.NewHandler(logger, auditService, rbacMW)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		AuthMW:       authMW,
		PostsHandler: postsHandler,
		UsersHandler: usersHandler,
		AuditHandler: auditHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
