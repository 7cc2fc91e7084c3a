package estimate

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// CatalogPort resolves brands for pricing.
type CatalogPort interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]catalog.Brand, error)
}

// Service computes and persists indent estimates.
type Service struct {
	repo     Repository
	cat      CatalogPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository, cat CatalogPort) *Service {
	return &Service{repo: repo, cat: cat, validate: validator.New()}
}

// Compute prices the lines and applies the tax cascade without persisting.
func (s *Service) Compute(ctx context.Context, shopID int64, input ComputeInput) (Estimate, error) {
	if shopID <= 0 {
		return Estimate{}, shared.ErrShopRequired
	}
	if len(input.Lines) == 0 {
		return Estimate{}, ErrNoLines
	}
	if err := s.validate.Struct(input); err != nil {
		return Estimate{}, err
	}
	ids := make([]int64, 0, len(input.Lines))
	for _, line := range input.Lines {
		ids = append(ids, line.BrandID)
	}
	brands, err := s.cat.Resolve(ctx, ids)
	if err != nil {
		return Estimate{}, err
	}
	lines, err := priceLines(input.Lines, brands)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		ShopID:         shopID,
		TenTimesLifted: input.TenTimesLifted,
		Lines:          lines,
		Totals:         computeTotals(lines, brands, input.TenTimesLifted),
	}, nil
}

// SaveDraft computes and stores an estimate for later retrieval.
func (s *Service) SaveDraft(ctx context.Context, shopID int64, input ComputeInput) (Estimate, error) {
	est, err := s.Compute(ctx, shopID, input)
	if err != nil {
		return Estimate{}, err
	}
	return s.repo.Save(ctx, est)
}

// GetDraft loads a stored estimate.
func (s *Service) GetDraft(ctx context.Context, shopID, id int64) (Estimate, error) {
	if shopID <= 0 {
		return Estimate{}, shared.ErrShopRequired
	}
	return s.repo.Get(ctx, shopID, id)
}

// ListDrafts returns recent estimates for a shop.
func (s *Service) ListDrafts(ctx context.Context, shopID int64, limit int) ([]Estimate, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	return s.repo.List(ctx, shopID, limit)
}
