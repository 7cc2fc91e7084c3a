package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Service coordinates catalog operations.
type Service struct {
	repo     Repository
	cache    *Cache
	audit    *shared.AuditLogger
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository, cache *Cache, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, validate: validator.New()}
}

// List returns a page of brands with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Brand, shared.Pagination, error) {
	brands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return brands, shared.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a brand by id.
func (s *Service) Get(ctx context.Context, id int64) (Brand, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber fetches a brand by its government brand number and size.
func (s *Service) GetByNumber(ctx context.Context, brandNumber string, sizeML int) (Brand, error) {
	return s.repo.GetByNumber(ctx, brandNumber, sizeML)
}

// Resolve loads brands by id for report joins.
func (s *Service) Resolve(ctx context.Context, ids []int64) (map[int64]Brand, error) {
	return s.repo.GetMany(ctx, ids)
}

// Create registers a new master brand.
func (s *Service) Create(ctx context.Context, input CreateInput) (Brand, error) {
	if err := s.validate.Struct(input); err != nil {
		return Brand{}, err
	}
	if !ValidKind(input.Kind) {
		return Brand{}, ErrUnknownKind
	}
	if input.MRP.IsNegative() || input.InvoicePrice.IsNegative() || input.SpecialMargin.IsNegative() || input.SpecialExciseCess.IsNegative() {
		return Brand{}, ErrNegativePrice
	}
	brand, err := s.repo.Create(ctx, Brand{
		BrandNumber:       strings.TrimSpace(input.BrandNumber),
		Name:              strings.TrimSpace(input.Name),
		Kind:              input.Kind,
		PackType:          input.PackType,
		PackQuantity:      input.PackQuantity,
		SizeML:            input.SizeML,
		MRP:               input.MRP,
		InvoicePrice:      input.InvoicePrice,
		SpecialMargin:     input.SpecialMargin,
		SpecialExciseCess: input.SpecialExciseCess,
	})
	if err != nil {
		return Brand{}, err
	}
	_ = s.cache.Bump(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "catalog:create",
			Entity:   "master_brand",
			EntityID: fmt.Sprintf("%d", brand.ID),
			Meta:     map[string]any{"brand_number": brand.BrandNumber, "size_ml": brand.SizeML},
		})
	}
	return brand, nil
}

// Update mutates an existing brand.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Brand, error) {
	if err := s.validate.Struct(input); err != nil {
		return Brand{}, err
	}
	if !ValidKind(input.Kind) {
		return Brand{}, ErrUnknownKind
	}
	if input.MRP.IsNegative() || input.InvoicePrice.IsNegative() || input.SpecialMargin.IsNegative() || input.SpecialExciseCess.IsNegative() {
		return Brand{}, ErrNegativePrice
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Brand{}, err
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.Kind = input.Kind
	existing.PackType = input.PackType
	existing.PackQuantity = input.PackQuantity
	existing.SizeML = input.SizeML
	existing.MRP = input.MRP
	existing.InvoicePrice = input.InvoicePrice
	existing.SpecialMargin = input.SpecialMargin
	existing.SpecialExciseCess = input.SpecialExciseCess
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return Brand{}, err
	}
	_ = s.cache.Bump(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "catalog:update",
			Entity:   "master_brand",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"brand_number": existing.BrandNumber},
		})
	}
	return existing, nil
}

// Search finds brands by number or name prefix. Results are cached in Redis
// under the current catalog version, so repeated keystrokes for the same
// query hit the cache rather than Postgres.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Brand, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Brand{}, nil
	}
	key, err := s.cache.BuildKey(ctx, "catalog", "search", strings.ToLower(query), fmt.Sprintf("%d", limit))
	if err != nil {
		return s.repo.Search(ctx, query, limit)
	}
	var brands []Brand
	err = s.cache.FetchJSON(ctx, key, &brands, func(ctx context.Context) (any, error) {
		return s.repo.Search(ctx, query, limit)
	})
	if err != nil {
		return nil, err
	}
	return brands, nil
}
