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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/app"
	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/comments"
	"github.com/taskdeck/taskdeck/internal/invites"
	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/notifications"
	"github.com/taskdeck/taskdeck/internal/observability"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/tasks"
	"github.com/taskdeck/taskdeck/internal/users"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	auditStore := audit.NewStore(dbpool)
	recorder := audit.NewRecorder(auditStore, logger, metrics.AuditWriteFailures())
	defer recorder.Flush()
	auditService := audit.NewService(auditStore)
	auditHandler := audit.NewHandler(logger, auditService)

	engine := policy.NewEngine(policy.DefaultTable(), policy.NewSummarySource(dbpool))
	guard := policy.Middleware{Engine: engine, Audit: recorder, Metrics: metrics, Logger: logger}

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authMiddleware := auth.Middleware{Store: tokenStore, Logger: logger}

	projectRepo := projects.NewRepository(dbpool)
	projectService := projects.NewService(projectRepo, recorder)
	projectHandler := projects.NewHandler(logger, projectService, guard)

	memberRepo := members.NewRepository(dbpool)
	memberService := members.NewService(memberRepo, recorder)
	memberHandler := members.NewHandler(logger, memberService, guard)

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo, projectRepo, memberRepo)
	authHandler := auth.NewHandler(logger, tokenStore, userService, recorder)

	taskRepo := tasks.NewRepository(dbpool)
	taskService := tasks.NewService(taskRepo, projectRepo, asynqClient, recorder, logger)
	taskHandler := tasks.NewHandler(logger, taskService, guard)

	commentRepo := comments.NewRepository(dbpool)
	commentService := comments.NewService(commentRepo, recorder)
	commentHandler := comments.NewHandler(logger, commentService, guard)

	notificationRepo := notifications.NewRepository(dbpool)
	notificationService := notifications.NewService(notificationRepo)
	notificationHandler := notifications.NewHandler(logger, notificationService, guard)

	inviteRepo := invites.NewRepository(dbpool)
	inviteService := invites.NewService(inviteRepo, memberService, notificationService, projectRepo, asynqClient, recorder, logger)
	inviteHandler := invites.NewHandler(logger, inviteService, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthMiddleware:       authMiddleware,
		Guard:                guard,
		AuthHandler:          authHandler,
		ProjectsHandler:      projectHandler,
		TasksHandler:         taskHandler,
		CommentsHandler:      commentHandler,
		MembersHandler:       memberHandler,
		InvitesHandler:       inviteHandler,
		NotificationsHandler: notificationHandler,
		AuditHandler:         auditHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
