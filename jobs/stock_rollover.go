package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/nandy235/wine-shop-inventory-sub001/internal/jobs"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// RolloverService carries one business date's balances into the next.
type RolloverService interface {
	Rollover(ctx context.Context, date time.Time) (int64, error)
}

// StockRolloverJob opens each new business day from the previous day's
// closing balances. It runs at the 11:30 IST day boundary and is safe to
// re-run; already carried rows are skipped.
type StockRolloverJob struct {
	Stock   RolloverService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStockRolloverJob wires dependencies for the rollover handler.
func NewStockRolloverJob(stockSvc RolloverService, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockRolloverJob {
	return &StockRolloverJob{
		Stock:   stockSvc,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// Handle processes stock rollover tasks.
func (j *StockRolloverJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stock == nil {
		return errors.New("stock rollover: handler not configured")
	}
	var payload StockRolloverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	// By the time the boundary cron fires, the business date has already
	// rolled; the day being carried forward is the previous one.
	date := shared.BusinessDate(j.clock()).AddDate(0, 0, -1)
	if payload.BusinessDate != "" {
		parsed, err := shared.ParseBusinessDate(payload.BusinessDate)
		if err != nil {
			return asynq.SkipRetry
		}
		date = parsed
	}

	tracker := j.metrics().Track(TaskStockRollover)
	carried, err := j.Stock.Rollover(ctx, date)
	if err != nil {
		j.logger().Error("stock rollover",
			slog.String("business_date", shared.FormatBusinessDate(date)),
			slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger().Info("stock rollover complete",
		slog.String("business_date", shared.FormatBusinessDate(date)),
		slog.Int64("rows_carried", carried))
	return tracker.End(nil)
}

func (j *StockRolloverJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockRolloverJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
