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

	"github.com/nandy235/wine-shop-inventory-sub001/internal/app"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/estimate"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/finance"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/observability"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/cache"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/platform/db"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/reports"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
	"github.com/nandy235/wine-shop-inventory-sub001/jobs"
	"github.com/nandy235/wine-shop-inventory-sub001/report"
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
		logger.Warn("redis unavailable, caches disabled", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, auditLogger)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, catalogService, auditLogger, idempotencyStore, stock.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	stockHandler := stock.NewHandler(logger, stockService)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo, auditLogger)
	financeHandler := finance.NewHandler(logger, financeService)

	estimateRepo := estimate.NewRepository(pool)
	estimateService := estimate.NewService(estimateRepo, catalogService)
	estimateHandler := estimate.NewHandler(logger, estimateService)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, catalogService, redisClient, cfg.ReportCacheTTL, pdfClient)
	reportsHandler := reports.NewHandler(logger, reportsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CatalogHandler:  catalogHandler,
		StockHandler:    stockHandler,
		FinanceHandler:  financeHandler,
		EstimateHandler: estimateHandler,
		ReportsHandler:  reportsHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
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
