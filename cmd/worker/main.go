package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/app"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/reports"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
	"github.com/nandy235/wine-shop-inventory-sub001/jobs"
	"github.com/nandy235/wine-shop-inventory-sub001/report"
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, auditLogger)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, catalogService, auditLogger, idempotencyStore, stock.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, catalogService, redisClient, cfg.ReportCacheTTL, pdfClient)

	rolloverJob := jobs.NewStockRolloverJob(stockService, logger, nil)
	prerenderJob := jobs.NewReportPrerenderJob(reportsService, pool, logger, nil)
	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotencyStore, logger, nil)

	rolloverTask, err := jobs.NewStockRolloverTask(jobs.StockRolloverPayload{})
	if err != nil {
		logger.Error("build rollover task", slog.Any("error", err))
		os.Exit(1)
	}
	prerenderTask, err := jobs.NewReportPrerenderTask(jobs.ReportPrerenderPayload{Days: 7})
	if err != nil {
		logger.Error("build prerender task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewIdempotencyCleanupTask(jobs.IdempotencyCleanupPayload{OlderThanHours: 72})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockRollover, Handler: rolloverJob.Handle},
			{Type: jobs.TaskReportPrerender, Handler: prerenderJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		// Cron specs run in IST. The day rolls at 11:30, prerender follows
		// once balances have settled, cleanup runs overnight.
		Cron: []jobs.CronRegistration{
			{Spec: "30 11 * * *", Task: rolloverTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 11 * * *", Task: prerenderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
