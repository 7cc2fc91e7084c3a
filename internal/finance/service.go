package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// Service coordinates income/expense bookkeeping.
type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) buildEntry(shopID int64, input EntryInput) (Entry, error) {
	if err := s.validate.Struct(input); err != nil {
		return Entry{}, err
	}
	if !input.Amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}
	date, err := shared.ParseBusinessDate(input.BusinessDate)
	if err != nil {
		return Entry{}, fmt.Errorf("finance: invalid business date: %w", err)
	}
	return Entry{
		ShopID:       shopID,
		Type:         input.Type,
		BusinessDate: date,
		Category:     strings.TrimSpace(input.Category),
		Amount:       input.Amount,
		Description:  strings.TrimSpace(input.Description),
	}, nil
}

// Add records a new entry.
func (s *Service) Add(ctx context.Context, shopID int64, input EntryInput) (Entry, error) {
	if shopID <= 0 {
		return Entry{}, shared.ErrShopRequired
	}
	entry, err := s.buildEntry(shopID, input)
	if err != nil {
		return Entry{}, err
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, shopID, "finance:add", created)
	return created, nil
}

// Update replaces an existing entry.
func (s *Service) Update(ctx context.Context, shopID, id int64, input EntryInput) (Entry, error) {
	if shopID <= 0 {
		return Entry{}, shared.ErrShopRequired
	}
	entry, err := s.buildEntry(shopID, input)
	if err != nil {
		return Entry{}, err
	}
	entry.ID = id
	if err := s.repo.Update(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, shopID, "finance:update", entry)
	return s.repo.Get(ctx, shopID, id)
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, shopID, id int64) error {
	if shopID <= 0 {
		return shared.ErrShopRequired
	}
	if err := s.repo.Delete(ctx, shopID, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ShopID:   shopID,
			Action:   "finance:delete",
			Entity:   "income_expense_entry",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}

// List returns entries for a shop within a date range.
func (s *Service) List(ctx context.Context, shopID int64, from, to time.Time) ([]Entry, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	return s.repo.ListByRange(ctx, shopID, from, to)
}

// Summary returns per-day income/expense totals for a date range.
func (s *Service) Summary(ctx context.Context, shopID int64, from, to time.Time) ([]DaySummary, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	return s.repo.SummarizeByRange(ctx, shopID, from, to)
}

func (s *Service) recordAudit(ctx context.Context, shopID int64, action string, entry Entry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ShopID:   shopID,
		Action:   action,
		Entity:   "income_expense_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta: map[string]any{
			"type":     entry.Type,
			"category": entry.Category,
			"amount":   entry.Amount.String(),
		},
	})
}
