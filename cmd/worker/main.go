package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/fieldline-erp/fieldline-erp/internal/app"
	jobmetrics "github.com/fieldline-erp/fieldline-erp/internal/jobs"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/cache"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/db"
	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
	"github.com/fieldline-erp/fieldline-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	repo := pnl.NewRepository(pool)
	registry := pnl.NewRegistry(logger)
	if err := pnl.RegisterSourceAdapters(registry, repo); err != nil {
		logger.Error("register source adapters", slog.Any("error", err))
		os.Exit(1)
	}
	manualStore := pnl.NewManualEntryStore(repo, logger)
	crossCache := pnl.NewCrossModuleCache(cfg.CrossModuleMaxAge)
	reportCache := pnl.NewCache(redisClient, cfg.ReportCacheTTL)
	service := pnl.NewService(registry, manualStore, crossCache, reportCache, logger, pnl.ServiceConfig{
		MarginThreshold: cfg.MarginThreshold,
	})

	warmupJob := jobs.NewPnLWarmupJob(service, logger, jobmetrics.NewMetrics(nil))

	warmupTask, err := jobs.NewPnLWarmupTask(jobs.PnLWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPnLWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
