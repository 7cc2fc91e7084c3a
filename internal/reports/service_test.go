package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

type memoryMovements struct {
	byDate map[string][]DayMovement
	calls  int
}

func (m *memoryMovements) MovementsForDate(_ context.Context, _ int64, date time.Time) ([]DayMovement, error) {
	m.calls++
	return m.byDate[shared.FormatBusinessDate(date)], nil
}

type fakeCatalog struct {
	brands map[int64]catalog.Brand
}

func (f *fakeCatalog) Resolve(_ context.Context, ids []int64) (map[int64]catalog.Brand, error) {
	out := make(map[int64]catalog.Brand, len(ids))
	for _, id := range ids {
		if b, ok := f.brands[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{brands: map[int64]catalog.Brand{
		1: {
			ID: 1, BrandNumber: "1001", Name: "Royal Oak", Kind: catalog.KindWhisky,
			PackQuantity: 12, SizeML: 750,
			MRP:          decimal.NewFromInt(500),
			InvoicePrice: decimal.NewFromInt(430),
		},
		2: {
			ID: 2, BrandNumber: "2001", Name: "Kingfisher Strong", Kind: catalog.KindBeer,
			PackQuantity: 24, SizeML: 650,
			MRP:          decimal.NewFromInt(150),
			InvoicePrice: decimal.NewFromInt(120),
		},
	}}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := shared.ParseBusinessDate(s)
	require.NoError(t, err)
	return d
}

func newTestService(repo Repository, rdb *redis.Client) *Service {
	svc := NewService(repo, testCatalog(), rdb, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestBuildStockLiftedAggregatesAcrossDays(t *testing.T) {
	repo := &memoryMovements{byDate: map[string][]DayMovement{
		"2025-05-10": {
			{BrandID: 1, Received: 24, Sold: 10},
			{BrandID: 2, Received: 48, Sold: 12},
		},
		"2025-05-11": {
			{BrandID: 1, Received: 14, Sold: 5},
		},
	}}
	svc := newTestService(repo, nil)

	report, err := svc.Build(context.Background(), 7, TypeStockLifted,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-11"))
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	// Whisky sorts before beer regardless of brand id order.
	whisky := report.Rows[0]
	require.Equal(t, int64(1), whisky.BrandID)
	require.Equal(t, 38, whisky.Bottles)
	require.Equal(t, 3, whisky.Quantity.Cases)
	require.Equal(t, 2, whisky.Quantity.Bottles)
	require.True(t, whisky.InvoiceValue.Equal(decimal.NewFromInt(38*430)))
	require.True(t, whisky.MRPValue.Equal(decimal.NewFromInt(38*500)))

	beer := report.Rows[1]
	require.Equal(t, 48, beer.Bottles)
	require.Equal(t, 2, beer.Quantity.Cases)
	require.Equal(t, 0, beer.Quantity.Bottles)

	require.Equal(t, 86, report.TotalBottles)
	require.True(t, report.TotalMRPValue.Equal(decimal.NewFromInt(38*500+48*150)))
}

func TestBuildSalesUsesSoldCounts(t *testing.T) {
	repo := &memoryMovements{byDate: map[string][]DayMovement{
		"2025-05-10": {{BrandID: 1, Received: 24, Sold: 10}},
		"2025-05-11": {{BrandID: 1, Received: 0, Sold: 4}},
	}}
	svc := newTestService(repo, nil)

	report, err := svc.Build(context.Background(), 7, TypeSales,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-11"))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	require.Equal(t, 14, report.Rows[0].Bottles)
	require.True(t, report.TotalMRPValue.Equal(decimal.NewFromInt(14*500)))
}

func TestBuildKindRollupHasFixedShape(t *testing.T) {
	repo := &memoryMovements{byDate: map[string][]DayMovement{
		"2025-05-10": {
			{BrandID: 1, Received: 12},
			{BrandID: 2, Received: 24},
		},
	}}
	svc := newTestService(repo, nil)

	report, err := svc.Build(context.Background(), 7, TypeStockLifted,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.NoError(t, err)

	require.Len(t, report.Kinds, len(catalog.KindOrder))
	require.Equal(t, catalog.KindWhisky, report.Kinds[0].Kind)

	// 12 × 500 = 6000 whisky, 24 × 150 = 3600 beer, total 9600.
	require.InDelta(t, 62.5, report.Kinds[0].Percent, 0.001)
	var beerRollup KindRollup
	for _, k := range report.Kinds {
		if k.Kind == catalog.KindBeer {
			beerRollup = k
		}
	}
	require.Equal(t, 24, beerRollup.Bottles)
	require.InDelta(t, 37.5, beerRollup.Percent, 0.001)

	// Untouched kinds still appear, with zero contribution.
	require.Equal(t, catalog.KindRum, report.Kinds[2].Kind)
	require.Zero(t, report.Kinds[2].Bottles)
	require.Zero(t, report.Kinds[2].Percent)
}

func TestBuildEmptyRangeZeroPercent(t *testing.T) {
	repo := &memoryMovements{byDate: map[string][]DayMovement{}}
	svc := newTestService(repo, nil)

	report, err := svc.Build(context.Background(), 7, TypeSales,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.NoError(t, err)
	require.Empty(t, report.Rows)
	require.Zero(t, report.TotalBottles)
	for _, k := range report.Kinds {
		require.Zero(t, k.Percent)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	svc := newTestService(&memoryMovements{}, nil)

	_, err := svc.Build(context.Background(), 0, TypeSales,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.ErrorIs(t, err, shared.ErrShopRequired)

	_, err = svc.Build(context.Background(), 7, Type("weekly"),
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = svc.Build(context.Background(), 7, TypeSales,
		mustDate(t, "2025-05-11"), mustDate(t, "2025-05-10"))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestBuildServesSecondCallFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &memoryMovements{byDate: map[string][]DayMovement{
		"2025-05-10": {{BrandID: 1, Received: 12}},
	}}
	svc := newTestService(repo, rdb)

	first, err := svc.Build(context.Background(), 7, TypeStockLifted,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	second, err := svc.Build(context.Background(), 7, TypeStockLifted,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls, "second call must not hit the repository")
	require.Equal(t, first.TotalBottles, second.TotalBottles)
	require.True(t, first.TotalMRPValue.Equal(second.TotalMRPValue))
}

func TestRenderHTMLIndianGrouping(t *testing.T) {
	require.Equal(t, "1,23,456.00", formatINR(decimal.NewFromInt(123456)))
	require.Equal(t, "500.00", formatINR(decimal.NewFromFloat(499.995)))

	repo := &memoryMovements{byDate: map[string][]DayMovement{
		"2025-05-10": {{BrandID: 1, Received: 240}},
	}}
	svc := newTestService(repo, nil)
	report, err := svc.Build(context.Background(), 7, TypeStockLifted,
		mustDate(t, "2025-05-10"), mustDate(t, "2025-05-10"))
	require.NoError(t, err)

	html, err := renderHTML(report)
	require.NoError(t, err)
	require.Contains(t, html, "Stock Lifted Report")
	require.Contains(t, html, "Royal Oak")
	// 240 × 500 MRP
	require.Contains(t, html, "1,20,000.00")
}
