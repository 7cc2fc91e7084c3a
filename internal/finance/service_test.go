package finance

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

type memoryRepo struct {
	entries map[int64]Entry
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{entries: make(map[int64]Entry)}
}

func (r *memoryRepo) Create(ctx context.Context, entry Entry) (Entry, error) {
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *memoryRepo) Update(ctx context.Context, entry Entry) error {
	existing, ok := r.entries[entry.ID]
	if !ok || existing.ShopID != entry.ShopID {
		return ErrEntryNotFound
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, shopID, id int64) error {
	existing, ok := r.entries[id]
	if !ok || existing.ShopID != shopID {
		return ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, shopID, id int64) (Entry, error) {
	existing, ok := r.entries[id]
	if !ok || existing.ShopID != shopID {
		return Entry{}, ErrEntryNotFound
	}
	return existing, nil
}

func (r *memoryRepo) ListByRange(ctx context.Context, shopID int64, from, to time.Time) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.ShopID == shopID && !e.BusinessDate.Before(from) && !e.BusinessDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) SummarizeByRange(ctx context.Context, shopID int64, from, to time.Time) ([]DaySummary, error) {
	return nil, nil
}

func TestAddValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, EntryInput{Type: "TRANSFER", BusinessDate: "2025-05-10", Category: "misc", Amount: decimal.NewFromInt(100)})
	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)

	_, err = svc.Add(ctx, 1, EntryInput{Type: EntryExpense, BusinessDate: "2025-05-10", Category: "ice", Amount: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Add(ctx, 1, EntryInput{Type: EntryExpense, BusinessDate: "10-05-2025", Category: "ice", Amount: decimal.NewFromInt(40)})
	require.Error(t, err)

	_, err = svc.Add(ctx, 0, EntryInput{Type: EntryIncome, BusinessDate: "2025-05-10", Category: "sales", Amount: decimal.NewFromInt(100)})
	require.ErrorIs(t, err, shared.ErrShopRequired)
}

func TestAddUpdateDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	entry, err := svc.Add(ctx, 1, EntryInput{Type: EntryIncome, BusinessDate: "2025-05-10", Category: "counter sales", Amount: decimal.NewFromInt(12500), Description: " evening "})
	require.NoError(t, err)
	require.Equal(t, "evening", entry.Description)
	require.Equal(t, "2025-05-10", shared.FormatBusinessDate(entry.BusinessDate))

	updated, err := svc.Update(ctx, 1, entry.ID, EntryInput{Type: EntryExpense, BusinessDate: "2025-05-10", Category: "transport", Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	require.Equal(t, EntryExpense, updated.Type)

	// Entries are shop scoped: another shop cannot touch them.
	err = svc.Delete(ctx, 2, entry.ID)
	require.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, svc.Delete(ctx, 1, entry.ID))
}
