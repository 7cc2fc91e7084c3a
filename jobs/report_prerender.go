package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/nandy235/wine-shop-inventory-sub001/internal/jobs"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/reports"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// ReportPrerenderJob warms the report cache for every shop that recorded
// stock in the trailing window, so the first morning request is a cache hit.
type ReportPrerenderJob struct {
	Reports *reports.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportPrerenderJob wires dependencies for the prerender handler.
func NewReportPrerenderJob(reportsSvc *reports.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportPrerenderJob {
	return &ReportPrerenderJob{
		Reports: reportsSvc,
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// Handle processes report prerender tasks.
func (j *ReportPrerenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil || j.Pool == nil {
		return errors.New("report prerender: handler not configured")
	}
	var payload ReportPrerenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Days <= 0 {
		payload.Days = 7
	}

	to := shared.BusinessDate(j.clock())
	from := to.AddDate(0, 0, -(payload.Days - 1))

	tracker := j.metrics().Track(TaskReportPrerender)
	shops, err := j.activeShops(ctx, from, to)
	if err != nil {
		j.logger().Error("load active shops", slog.Any("error", err))
		return tracker.End(err)
	}

	warmed := 0
	for _, shopID := range shops {
		for _, typ := range []reports.Type{reports.TypeStockLifted, reports.TypeSales} {
			if _, err := j.Reports.Build(ctx, shopID, typ, from, to); err != nil {
				j.logger().Error("prerender report",
					slog.Int64("shop_id", shopID),
					slog.String("type", string(typ)),
					slog.Any("error", err))
				return tracker.End(err)
			}
			warmed++
		}
	}
	j.logger().Info("report prerender complete",
		slog.Int("shops", len(shops)),
		slog.Int("reports_warmed", warmed))
	return tracker.End(nil)
}

func (j *ReportPrerenderJob) activeShops(ctx context.Context, from, to time.Time) ([]int64, error) {
	rows, err := j.Pool.Query(ctx,
		`SELECT DISTINCT shop_id FROM daily_stock WHERE business_date BETWEEN $1 AND $2 ORDER BY shop_id`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		shops = append(shops, id)
	}
	return shops, rows.Err()
}

func (j *ReportPrerenderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportPrerenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
