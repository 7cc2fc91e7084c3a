package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockRollover carries closing balances into the next business day.
	TaskStockRollover = "stock:rollover"
	// TaskReportPrerender warms report caches for recently active shops.
	TaskReportPrerender = "reports:prerender"
	// TaskIdempotencyCleanup drops stale idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// StockRolloverPayload selects the business date whose balances roll
// forward. An empty date means the current business date.
type StockRolloverPayload struct {
	BusinessDate string `json:"businessDate,omitempty"`
}

// NewStockRolloverTask constructs a rollover task.
func NewStockRolloverTask(payload StockRolloverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockRollover, data), nil
}

// ReportPrerenderPayload describes how far back prerendering reaches.
type ReportPrerenderPayload struct {
	// Days is the trailing window length, today included.
	Days int `json:"days"`
}

// NewReportPrerenderTask constructs a report prerender task.
func NewReportPrerenderTask(payload ReportPrerenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportPrerender, data), nil
}

// IdempotencyCleanupPayload bounds how old a key must be to be dropped.
type IdempotencyCleanupPayload struct {
	OlderThanHours int `json:"olderThanHours"`
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(payload IdempotencyCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
