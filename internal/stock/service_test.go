package stock

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

type memoryRepo struct {
	daily  map[string]DailyRecord
	shifts []ShiftRecord
	nextID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{daily: make(map[string]DailyRecord)}
}

func dailyKey(shopID, brandID int64, date time.Time) string {
	return fmt.Sprintf("%d:%d:%s", shopID, brandID, shared.FormatBusinessDate(date))
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetDaily(ctx context.Context, shopID, brandID int64, date time.Time) (DailyRecord, error) {
	if rec, ok := r.daily[dailyKey(shopID, brandID, date)]; ok {
		return rec, nil
	}
	return DailyRecord{}, ErrRecordNotFound
}

func (r *memoryRepo) ListDaily(ctx context.Context, shopID int64, date time.Time) ([]DailyRecord, error) {
	var recs []DailyRecord
	for _, rec := range r.daily {
		if rec.ShopID == shopID && rec.BusinessDate.Equal(date) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *memoryRepo) ListShifts(ctx context.Context, shopID int64, from, to time.Time) ([]ShiftRecord, error) {
	var recs []ShiftRecord
	for _, rec := range r.shifts {
		if rec.ShopID == shopID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *memoryRepo) CarryForward(ctx context.Context, date time.Time) (int64, error) {
	next := date.AddDate(0, 0, 1)
	var carried int64
	for _, rec := range r.daily {
		if !rec.BusinessDate.Equal(date) {
			continue
		}
		key := dailyKey(rec.ShopID, rec.BrandID, next)
		if _, exists := r.daily[key]; exists {
			continue
		}
		opening := rec.Total()
		if rec.Closing != nil {
			opening = *rec.Closing
		}
		r.nextID++
		r.daily[key] = DailyRecord{
			ID:           r.nextID,
			ShopID:       rec.ShopID,
			BrandID:      rec.BrandID,
			BusinessDate: next,
			Opening:      opening,
			Markup:       rec.Markup,
		}
		carried++
	}
	return carried, nil
}

func (t *memoryTx) GetDailyForUpdate(ctx context.Context, shopID, brandID int64, date time.Time) (DailyRecord, error) {
	return t.repo.GetDaily(ctx, shopID, brandID, date)
}

func (t *memoryTx) InsertDaily(ctx context.Context, rec DailyRecord) (int64, error) {
	key := dailyKey(rec.ShopID, rec.BrandID, rec.BusinessDate)
	if _, exists := t.repo.daily[key]; exists {
		return 0, ErrAlreadyOnboarded
	}
	t.repo.nextID++
	rec.ID = t.repo.nextID
	t.repo.daily[key] = rec
	return rec.ID, nil
}

func (t *memoryTx) UpdateDaily(ctx context.Context, rec DailyRecord) error {
	t.repo.daily[dailyKey(rec.ShopID, rec.BrandID, rec.BusinessDate)] = rec
	return nil
}

func (t *memoryTx) InsertShift(ctx context.Context, rec ShiftRecord) (int64, error) {
	t.repo.nextID++
	rec.ID = t.repo.nextID
	t.repo.shifts = append(t.repo.shifts, rec)
	return rec.ID, nil
}

type fakeCatalog struct {
	brands map[int64]catalog.Brand
}

func (f *fakeCatalog) Resolve(ctx context.Context, ids []int64) (map[int64]catalog.Brand, error) {
	out := make(map[int64]catalog.Brand)
	for _, id := range ids {
		if b, ok := f.brands[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{brands: map[int64]catalog.Brand{
		1: {ID: 1, BrandNumber: "1012", Name: "Royal Crest Whisky", Kind: catalog.KindWhisky, PackQuantity: 12, SizeML: 750, MRP: decimal.NewFromInt(500)},
		2: {ID: 2, BrandNumber: "2044", Name: "Coast Lager", Kind: catalog.KindBeer, PackQuantity: 24, SizeML: 650, MRP: decimal.NewFromInt(150)},
	}}
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, testCatalog(), nil, nil, ServiceConfig{})
	svc.now = func() time.Time { return time.Date(2025, 5, 10, 14, 0, 0, 0, shared.IST) }
	return svc
}

func TestOnboardNormalizesQuantities(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// 14 loose bottles against a pack of 12 carry into an extra case.
	recs, err := svc.Onboard(ctx, 1, []OnboardItem{
		{BrandID: 1, Quantity: Quantity{Cases: 2, Bottles: 14}, Markup: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 3*12+2, recs[0].Opening)

	_, err = svc.Onboard(ctx, 1, []OnboardItem{{BrandID: 1, Quantity: Quantity{Cases: 1}}})
	require.ErrorIs(t, err, ErrAlreadyOnboarded)
}

func TestReceiveAccumulates(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	rec, err := svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 1}})
	require.NoError(t, err)
	require.Equal(t, 12, rec.Received)

	rec, err = svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Bottles: 6}})
	require.NoError(t, err)
	require.Equal(t, 18, rec.Received)
	require.Equal(t, 18, rec.Total())
}

func TestSetClosingGuards(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 1}})
	require.NoError(t, err)

	_, err = svc.SetClosing(ctx, 1, ClosingInput{BrandID: 1, Counted: Quantity{Cases: 2}})
	require.ErrorIs(t, err, ErrClosingExceedsTotal)

	rec, err := svc.SetClosing(ctx, 1, ClosingInput{BrandID: 1, Counted: Quantity{Bottles: 4}})
	require.NoError(t, err)
	require.NotNil(t, rec.Closing)
	require.Equal(t, 4, *rec.Closing)
	require.Equal(t, 8, rec.Sold())
}

func TestPostShiftPairsLegs(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 2}})
	require.NoError(t, err)

	out, in, err := svc.PostShift(ctx, ShiftInput{
		SrcShopID: 1, DstShopID: 2, BrandID: 1,
		Quantity: Quantity{Cases: 1}, SupplierName: "Depot 7",
	})
	require.NoError(t, err)
	require.Equal(t, -12, out.QtyBottles)
	require.Equal(t, 12, in.QtyBottles)
	require.Equal(t, int64(2), out.PeerShopID)
	require.Equal(t, int64(1), in.PeerShopID)

	src, err := repo.GetDaily(ctx, 1, 1, out.BusinessDate)
	require.NoError(t, err)
	require.Equal(t, 12, src.Total())
	dst, err := repo.GetDaily(ctx, 2, 1, in.BusinessDate)
	require.NoError(t, err)
	require.Equal(t, 12, dst.Total())
}

func TestPostShiftRejectsInvalid(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.PostShift(ctx, ShiftInput{SrcShopID: 1, DstShopID: 1, BrandID: 1, Quantity: Quantity{Cases: 1}})
	require.ErrorIs(t, err, ErrSameShop)

	_, _, err = svc.PostShift(ctx, ShiftInput{SrcShopID: 1, DstShopID: 2, BrandID: 1, Quantity: Quantity{Cases: 1}})
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestRolloverCarriesClosing(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 2}})
	require.NoError(t, err)
	_, err = svc.SetClosing(ctx, 1, ClosingInput{BrandID: 1, Counted: Quantity{Bottles: 9}})
	require.NoError(t, err)

	date := shared.BusinessDate(svc.now())
	carried, err := svc.Rollover(ctx, date)
	require.NoError(t, err)
	require.Equal(t, int64(1), carried)

	next, err := repo.GetDaily(ctx, 1, 1, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 9, next.Opening)
	require.Equal(t, 0, next.Received)
	require.Nil(t, next.Closing)
}

func TestCurrentStockJoinsCatalog(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Onboard(ctx, 1, []OnboardItem{
		{BrandID: 1, Quantity: Quantity{Cases: 2, Bottles: 3}, Markup: decimal.NewFromInt(10)},
		{BrandID: 2, Quantity: Quantity{Cases: 1}, Markup: decimal.Zero},
	})
	require.NoError(t, err)

	items, err := svc.CurrentStock(ctx, 1, shared.BusinessDate(svc.now()))
	require.NoError(t, err)
	require.Len(t, items, 2)

	whisky := items[0]
	require.Equal(t, "1012", whisky.BrandNumber)
	require.Equal(t, Quantity{Cases: 2, Bottles: 3}, whisky.Total)
	require.True(t, whisky.FinalPrice.Equal(decimal.NewFromInt(510)))
	require.True(t, whisky.StockValue.Equal(decimal.NewFromInt(510*27)))
}

type fakeIdemStore struct {
	keys    map[string]bool
	deleted []string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{keys: make(map[string]bool)}
}

func (f *fakeIdemStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdemStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.keys, key)
	return nil
}

func TestPostShiftRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	svc.idempotency = newFakeIdemStore()
	ctx := context.Background()

	_, err := svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 2}})
	require.NoError(t, err)

	input := ShiftInput{
		SrcShopID: 1, DstShopID: 2, BrandID: 1,
		Quantity: Quantity{Cases: 1}, Code: "INV-77",
	}
	_, _, err = svc.PostShift(ctx, input)
	require.NoError(t, err)
	require.Len(t, repo.shifts, 2)

	// A retry with the same code must not move stock twice.
	_, _, err = svc.PostShift(ctx, input)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.Len(t, repo.shifts, 2)

	src, err := repo.GetDaily(ctx, 1, 1, shared.BusinessDate(svc.now()))
	require.NoError(t, err)
	require.Equal(t, 12, src.Total())
}

func TestPostShiftReleasesKeyWhenTransactionFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	store := newFakeIdemStore()
	svc.idempotency = store
	ctx := context.Background()

	// Source shop has no stock, so the transfer fails inside the
	// transaction after the key was claimed.
	input := ShiftInput{
		SrcShopID: 1, DstShopID: 2, BrandID: 1,
		Quantity: Quantity{Cases: 1}, Code: "INV-78",
	}
	_, _, err := svc.PostShift(ctx, input)
	require.ErrorIs(t, err, ErrNegativeStock)
	require.Len(t, store.deleted, 1)
	require.Empty(t, store.keys)

	// With the key released, the same code succeeds once stock exists.
	_, err = svc.Receive(ctx, 1, ReceiveInput{BrandID: 1, Quantity: Quantity{Cases: 2}})
	require.NoError(t, err)
	_, _, err = svc.PostShift(ctx, input)
	require.NoError(t, err)
	require.Len(t, repo.shifts, 2)
}
