package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

type fakeRollover struct {
	dates []time.Time
	err   error
}

func (f *fakeRollover) Rollover(_ context.Context, date time.Time) (int64, error) {
	f.dates = append(f.dates, date)
	return 3, f.err
}

func TestStockRolloverDefaultsToPreviousBusinessDate(t *testing.T) {
	svc := &fakeRollover{}
	job := NewStockRolloverJob(svc, nil, nil)
	// 2025-05-11 12:00 IST is already business date 2025-05-11; the day
	// that just closed is 2025-05-10.
	job.clock = func() time.Time {
		return time.Date(2025, 5, 11, 12, 0, 0, 0, shared.IST)
	}

	task, err := NewStockRolloverTask(StockRolloverPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, svc.dates, 1)
	require.Equal(t, "2025-05-10", shared.FormatBusinessDate(svc.dates[0]))
}

func TestStockRolloverExplicitDate(t *testing.T) {
	svc := &fakeRollover{}
	job := NewStockRolloverJob(svc, nil, nil)

	task, err := NewStockRolloverTask(StockRolloverPayload{BusinessDate: "2025-04-01"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, svc.dates, 1)
	require.Equal(t, "2025-04-01", shared.FormatBusinessDate(svc.dates[0]))
}

type fakeCleaner struct {
	olderThan time.Duration
}

func (f *fakeCleaner) Cleanup(_ context.Context, olderThan time.Duration) error {
	f.olderThan = olderThan
	return nil
}

func TestIdempotencyCleanupDefaultsWindow(t *testing.T) {
	store := &fakeCleaner{}
	job := NewIdempotencyCleanupJob(store, nil, nil)

	task, err := NewIdempotencyCleanupTask(IdempotencyCleanupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 72*time.Hour, store.olderThan)
}
