package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/nandy235/wine-shop-inventory-sub001/internal/jobs"
)

// KeyCleaner drops idempotency keys older than a cutoff.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleanupJob prunes stale idempotency keys so retried stock
// shifts are not blocked by ancient entries.
type IdempotencyCleanupJob struct {
	Store   KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob wires dependencies for the cleanup handler.
func NewIdempotencyCleanupJob(store KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes idempotency cleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OlderThanHours <= 0 {
		payload.OlderThanHours = 72
	}

	tracker := j.metrics().Track(TaskIdempotencyCleanup)
	olderThan := time.Duration(payload.OlderThanHours) * time.Hour
	if err := j.Store.Cleanup(ctx, olderThan); err != nil {
		j.logger().Error("idempotency cleanup", slog.Any("error", err))
		return tracker.End(err)
	}
	j.logger().Info("idempotency cleanup complete",
		slog.Int("older_than_hours", payload.OlderThanHours))
	return tracker.End(nil)
}

func (j *IdempotencyCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *IdempotencyCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
