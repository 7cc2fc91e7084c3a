package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	brands      map[int64]Brand
	nextID      int64
	searchCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{brands: make(map[int64]Brand), nextID: 1}
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Brand, int, error) {
	var out []Brand
	for _, b := range r.brands {
		if filter.Kind != "" && b.Kind != filter.Kind {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Brand, error) {
	b, ok := r.brands[id]
	if !ok {
		return Brand{}, ErrBrandNotFound
	}
	return b, nil
}

func (r *memoryRepo) GetByNumber(_ context.Context, number string, sizeML int) (Brand, error) {
	for _, b := range r.brands {
		if b.BrandNumber == number && b.SizeML == sizeML {
			return b, nil
		}
	}
	return Brand{}, ErrBrandNotFound
}

func (r *memoryRepo) GetMany(_ context.Context, ids []int64) (map[int64]Brand, error) {
	out := make(map[int64]Brand, len(ids))
	for _, id := range ids {
		if b, ok := r.brands[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(_ context.Context, b Brand) (Brand, error) {
	for _, existing := range r.brands {
		if existing.BrandNumber == b.BrandNumber && existing.SizeML == b.SizeML {
			return Brand{}, ErrDuplicateBrand
		}
	}
	b.ID = r.nextID
	r.nextID++
	r.brands[b.ID] = b
	return b, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, b Brand) error {
	if _, ok := r.brands[id]; !ok {
		return ErrBrandNotFound
	}
	b.ID = id
	r.brands[id] = b
	return nil
}

func (r *memoryRepo) Search(_ context.Context, query string, limit int) ([]Brand, error) {
	r.searchCalls++
	var out []Brand
	for _, b := range r.brands {
		if strings.HasPrefix(b.BrandNumber, query) ||
			strings.Contains(strings.ToLower(b.Name), strings.ToLower(query)) {
			out = append(out, b)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func validCreate() CreateInput {
	return CreateInput{
		BrandNumber:  "1012",
		Name:         "Royal Challenge Whisky",
		Kind:         KindWhisky,
		PackType:     "G",
		PackQuantity: 12,
		SizeML:       750,
		MRP:          decimal.NewFromInt(560),
		InvoicePrice: decimal.RequireFromString("470.40"),
	}
}

func TestCreateAndGetByNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	brand, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	require.NotZero(t, brand.ID)

	got, err := svc.GetByNumber(context.Background(), "1012", 750)
	require.NoError(t, err)
	require.Equal(t, brand.ID, got.ID)

	_, err = svc.GetByNumber(context.Background(), "1012", 180)
	require.ErrorIs(t, err, ErrBrandNotFound)
}

func TestCreateRejectsDuplicateNumberAndSize(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreate())
	require.ErrorIs(t, err, ErrDuplicateBrand)

	// Same number, different size is a distinct catalog entry.
	other := validCreate()
	other.SizeML = 180
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	missing := validCreate()
	missing.Name = ""
	_, err := svc.Create(context.Background(), missing)
	require.Error(t, err)

	badKind := validCreate()
	badKind.Kind = Kind("Toddy")
	_, err = svc.Create(context.Background(), badKind)
	require.ErrorIs(t, err, ErrUnknownKind)

	negative := validCreate()
	negative.MRP = decimal.NewFromInt(-1)
	_, err = svc.Create(context.Background(), negative)
	require.ErrorIs(t, err, ErrNegativePrice)

	zeroPack := validCreate()
	zeroPack.PackQuantity = 0
	_, err = svc.Create(context.Background(), zeroPack)
	require.Error(t, err)
}

func TestUpdateKeepsBrandNumber(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	brand, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), brand.ID, UpdateInput{
		Name:         "Royal Challenge Premium",
		Kind:         KindWhisky,
		PackType:     "P",
		PackQuantity: 12,
		SizeML:       750,
		MRP:          decimal.NewFromInt(580),
		InvoicePrice: decimal.RequireFromString("487.20"),
	})
	require.NoError(t, err)
	require.Equal(t, "1012", updated.BrandNumber)
	require.Equal(t, "Royal Challenge Premium", updated.Name)
	require.True(t, updated.MRP.Equal(decimal.NewFromInt(580)))

	_, err = svc.Update(context.Background(), 999, UpdateInput{
		Name: "x", Kind: KindWhisky, PackType: "G", PackQuantity: 12, SizeML: 750,
	})
	require.ErrorIs(t, err, ErrBrandNotFound)
}

func TestSearchCacheInvalidatedByWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newMemoryRepo()
	svc := NewService(repo, NewCache(rdb, time.Minute), nil)

	_, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), "1012", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 1, repo.searchCalls)

	// Same query is served from cache.
	found, err = svc.Search(context.Background(), "1012", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 1, repo.searchCalls)

	// A write bumps the catalog version, so the next search misses the old
	// key and sees the new brand.
	second := validCreate()
	second.BrandNumber = "1013"
	second.Name = "Royal Challenge Reserve"
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)

	found, err = svc.Search(context.Background(), "101", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, 2, repo.searchCalls)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	found, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	require.Empty(t, found)
}
