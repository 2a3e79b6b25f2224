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

	"github.com/fieldline-erp/fieldline-erp/internal/app"
	"github.com/fieldline-erp/fieldline-erp/internal/observability"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/cache"
	"github.com/fieldline-erp/fieldline-erp/internal/platform/db"
	"github.com/fieldline-erp/fieldline-erp/internal/pnl"
	pnlhttp "github.com/fieldline-erp/fieldline-erp/internal/pnl/http"
	"github.com/fieldline-erp/fieldline-erp/jobs"
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
		logger.Warn("redis unavailable, reports will be computed fresh", slog.Any("error", err))
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

	repo := pnl.NewRepository(pool)

	registry := pnl.NewRegistry(logger)
	if err := pnl.RegisterSourceAdapters(registry, repo); err != nil {
		logger.Error("register source adapters", slog.Any("error", err))
		os.Exit(1)
	}

	manualStore := pnl.NewManualEntryStore(repo, logger)
	if err := manualStore.EnsureSeeded(ctx, nil); err != nil {
		logger.Error("seed manual entry catalog", slog.Any("error", err))
		os.Exit(1)
	}

	crossCache := pnl.NewCrossModuleCache(cfg.CrossModuleMaxAge)
	reportCache := pnl.NewCache(redisClient, cfg.ReportCacheTTL)
	service := pnl.NewService(registry, manualStore, crossCache, reportCache, logger, pnl.ServiceConfig{
		MarginThreshold: cfg.MarginThreshold,
	})

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("jobs client unavailable, skipping warmup scheduling", slog.Any("error", err))
	} else {
		service.WithWarmer(jobsClient)
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	if err := pnlhttp.SetupMetrics(metrics.Registerer()); err != nil {
		logger.Warn("register pnl metrics", slog.Any("error", err))
	}

	pnlHandler := pnlhttp.NewHandler(logger, service)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		Pool:       pool,
		PnLHandler: pnlHandler,
		JobHandler: jobHandler,
		Metrics:    metrics,
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
