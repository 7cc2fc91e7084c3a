package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListDaily(ctx context.Context, shopID int64, date time.Time) ([]DailyRecord, error)
	ListShifts(ctx context.Context, shopID int64, from, to time.Time) ([]ShiftRecord, error)
	CarryForward(ctx context.Context, date time.Time) (int64, error)
}

// CatalogPort resolves brands for joins and pack-size conversion.
type CatalogPort interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]catalog.Brand, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards duplicate shift postings, implemented by
// shared.IdempotencyStore.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service coordinates daily stock operations.
type Service struct {
	repo        RepositoryPort
	cat         CatalogPort
	audit       AuditPort
	idempotency IdempotencyPort
	allowNeg    bool
	now         func() time.Time
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort, audit AuditPort, idem IdempotencyPort, cfg ServiceConfig) *Service {
	return &Service{
		repo:        repo,
		cat:         cat,
		audit:       audit,
		idempotency: idem,
		allowNeg:    cfg.AllowNegativeStock,
		now:         time.Now,
	}
}

// Onboard seeds initial stock records for a shop on the current business
// date. Quantities are normalized so loose bottles above a full case carry
// into the case count before conversion.
func (s *Service) Onboard(ctx context.Context, shopID int64, items []OnboardItem) ([]DailyRecord, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	if len(items) == 0 {
		return nil, ErrInvalidQuantity
	}
	brands, err := s.resolveBrands(ctx, items)
	if err != nil {
		return nil, err
	}
	date := shared.BusinessDate(s.now())

	var recs []DailyRecord
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, item := range items {
			brand, ok := brands[item.BrandID]
			if !ok {
				return catalog.ErrBrandNotFound
			}
			qty := item.Quantity.Normalize(brand.PackQuantity)
			total := qty.TotalBottles(brand.PackQuantity)
			if total <= 0 || qty.Cases < 0 || qty.Bottles < 0 {
				return ErrInvalidQuantity
			}
			if item.Markup.IsNegative() {
				return fmt.Errorf("stock: markup must be >= 0 for brand %d", item.BrandID)
			}
			rec := DailyRecord{
				ShopID:       shopID,
				BrandID:      item.BrandID,
				BusinessDate: date,
				Opening:      total,
				Markup:       item.Markup,
			}
			id, err := tx.InsertDaily(ctx, rec)
			if err != nil {
				return err
			}
			rec.ID = id
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, shopID, "stock:onboard", fmt.Sprintf("%s:%d", shared.FormatBusinessDate(date), shopID), map[string]any{"items": len(recs)})
	return recs, nil
}

// Receive adds depot stock to today's record for a brand.
func (s *Service) Receive(ctx context.Context, shopID int64, input ReceiveInput) (DailyRecord, error) {
	if shopID <= 0 {
		return DailyRecord{}, shared.ErrShopRequired
	}
	brand, err := s.resolveBrand(ctx, input.BrandID)
	if err != nil {
		return DailyRecord{}, err
	}
	qty := input.Quantity.Normalize(brand.PackQuantity)
	total := qty.TotalBottles(brand.PackQuantity)
	if total <= 0 || qty.Cases < 0 || qty.Bottles < 0 {
		return DailyRecord{}, ErrInvalidQuantity
	}
	date := shared.BusinessDate(s.now())

	var rec DailyRecord
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetDailyForUpdate(ctx, shopID, input.BrandID, date)
		if errors.Is(err, ErrRecordNotFound) {
			rec = DailyRecord{ShopID: shopID, BrandID: input.BrandID, BusinessDate: date, Received: total}
			id, err := tx.InsertDaily(ctx, rec)
			if err != nil {
				return err
			}
			rec.ID = id
			return nil
		}
		if err != nil {
			return err
		}
		current.Received += total
		if err := tx.UpdateDaily(ctx, current); err != nil {
			return err
		}
		rec = current
		return nil
	})
	if err != nil {
		return DailyRecord{}, err
	}
	s.recordAudit(ctx, shopID, "stock:receive", fmt.Sprintf("%d:%d", shopID, input.BrandID), map[string]any{"bottles": total})
	return rec, nil
}

// SetClosing records the end-of-day physical count for a brand.
func (s *Service) SetClosing(ctx context.Context, shopID int64, input ClosingInput) (DailyRecord, error) {
	if shopID <= 0 {
		return DailyRecord{}, shared.ErrShopRequired
	}
	brand, err := s.resolveBrand(ctx, input.BrandID)
	if err != nil {
		return DailyRecord{}, err
	}
	counted := input.Counted.Normalize(brand.PackQuantity).TotalBottles(brand.PackQuantity)
	if counted < 0 {
		return DailyRecord{}, ErrInvalidQuantity
	}
	date := shared.BusinessDate(s.now())

	var rec DailyRecord
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetDailyForUpdate(ctx, shopID, input.BrandID, date)
		if err != nil {
			return err
		}
		if counted > current.Total() {
			return ErrClosingExceedsTotal
		}
		current.Closing = &counted
		if err := tx.UpdateDaily(ctx, current); err != nil {
			return err
		}
		rec = current
		return nil
	})
	if err != nil {
		return DailyRecord{}, err
	}
	s.recordAudit(ctx, shopID, "stock:closing", fmt.Sprintf("%d:%d", shopID, input.BrandID), map[string]any{"bottles": counted})
	return rec, nil
}

// UpdateMarkup changes the per-bottle markup on today's record.
func (s *Service) UpdateMarkup(ctx context.Context, shopID, brandID int64, markup decimal.Decimal) (DailyRecord, error) {
	if shopID <= 0 {
		return DailyRecord{}, shared.ErrShopRequired
	}
	if markup.IsNegative() {
		return DailyRecord{}, fmt.Errorf("stock: markup must be >= 0")
	}
	date := shared.BusinessDate(s.now())

	var rec DailyRecord
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetDailyForUpdate(ctx, shopID, brandID, date)
		if err != nil {
			return err
		}
		current.Markup = markup
		if err := tx.UpdateDaily(ctx, current); err != nil {
			return err
		}
		rec = current
		return nil
	})
	return rec, err
}

// PostShift moves stock between shops as a signed OUT + IN pair in one
// transaction. The outbound leg cannot drive the source shop negative.
func (s *Service) PostShift(ctx context.Context, input ShiftInput) (ShiftRecord, ShiftRecord, error) {
	if input.SrcShopID <= 0 || input.DstShopID <= 0 {
		return ShiftRecord{}, ShiftRecord{}, shared.ErrShopRequired
	}
	if input.SrcShopID == input.DstShopID {
		return ShiftRecord{}, ShiftRecord{}, ErrSameShop
	}
	brand, err := s.resolveBrand(ctx, input.BrandID)
	if err != nil {
		return ShiftRecord{}, ShiftRecord{}, err
	}
	qty := input.Quantity.Normalize(brand.PackQuantity)
	total := qty.TotalBottles(brand.PackQuantity)
	if total <= 0 || qty.Cases < 0 || qty.Bottles < 0 {
		return ShiftRecord{}, ShiftRecord{}, ErrInvalidQuantity
	}

	now := s.now().UTC()
	date := shared.BusinessDate(now)
	code := input.Code
	if code == "" {
		code = fmt.Sprintf("SHIFT-%s", uuid.NewString())
	}

	key := fmt.Sprintf("SHIFT:%s:%d:%d:%d", code, input.SrcShopID, input.DstShopID, input.BrandID)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "stock"); err != nil {
			return ShiftRecord{}, ShiftRecord{}, err
		}
		insertedKey = true
	}

	var out, in ShiftRecord
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.applyShiftLeg(ctx, tx, input.SrcShopID, input.BrandID, date, -total); err != nil {
			return err
		}
		if err := s.applyShiftLeg(ctx, tx, input.DstShopID, input.BrandID, date, total); err != nil {
			return err
		}
		out = ShiftRecord{
			Code:         fmt.Sprintf("%s-OUT", code),
			ShopID:       input.SrcShopID,
			PeerShopID:   input.DstShopID,
			BrandID:      input.BrandID,
			QtyBottles:   -total,
			SupplierName: input.SupplierName,
			SupplierCode: input.SupplierCode,
			BusinessDate: date,
			PostedAt:     now,
		}
		in = ShiftRecord{
			Code:         fmt.Sprintf("%s-IN", code),
			ShopID:       input.DstShopID,
			PeerShopID:   input.SrcShopID,
			BrandID:      input.BrandID,
			QtyBottles:   total,
			SupplierName: input.SupplierName,
			SupplierCode: input.SupplierCode,
			BusinessDate: date,
			PostedAt:     now,
		}
		outID, err := tx.InsertShift(ctx, out)
		if err != nil {
			return err
		}
		out.ID = outID
		inID, err := tx.InsertShift(ctx, in)
		if err != nil {
			return err
		}
		in.ID = inID
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return ShiftRecord{}, ShiftRecord{}, err
	}
	s.recordAudit(ctx, input.SrcShopID, "stock:shift", code, map[string]any{
		"dst_shop": input.DstShopID,
		"brand_id": input.BrandID,
		"bottles":  total,
	})
	return out, in, nil
}

func (s *Service) applyShiftLeg(ctx context.Context, tx TxRepository, shopID, brandID int64, date time.Time, delta int) error {
	current, err := tx.GetDailyForUpdate(ctx, shopID, brandID, date)
	if errors.Is(err, ErrRecordNotFound) {
		if delta < 0 && !s.allowNeg {
			return ErrNegativeStock
		}
		_, err := tx.InsertDaily(ctx, DailyRecord{
			ShopID:       shopID,
			BrandID:      brandID,
			BusinessDate: date,
			Received:     delta,
		})
		return err
	}
	if err != nil {
		return err
	}
	current.Received += delta
	if !s.allowNeg && current.Total() < 0 {
		return ErrNegativeStock
	}
	return tx.UpdateDaily(ctx, current)
}

// ListShifts returns transfer legs touching a shop in a date range.
func (s *Service) ListShifts(ctx context.Context, shopID int64, from, to time.Time) ([]ShiftRecord, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	return s.repo.ListShifts(ctx, shopID, from, to)
}

// CurrentStock returns the shop's stock for a business date joined against
// the catalog, with case/bottle splits and final prices computed.
func (s *Service) CurrentStock(ctx context.Context, shopID int64, date time.Time) ([]CurrentStockItem, error) {
	if shopID <= 0 {
		return nil, shared.ErrShopRequired
	}
	recs, err := s.repo.ListDaily(ctx, shopID, date)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.BrandID)
	}
	brands, err := s.cat.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CurrentStockItem, 0, len(recs))
	for _, rec := range recs {
		brand, ok := brands[rec.BrandID]
		if !ok {
			continue
		}
		item := CurrentStockItem{
			BrandID:      brand.ID,
			BrandNumber:  brand.BrandNumber,
			Name:         brand.Name,
			Kind:         brand.Kind,
			SizeML:       brand.SizeML,
			PackQuantity: brand.PackQuantity,
			Opening:      SplitBottles(rec.Opening, brand.PackQuantity),
			Received:     SplitBottles(rec.Received, brand.PackQuantity),
			Total:        SplitBottles(rec.Total(), brand.PackQuantity),
			MRP:          brand.MRP,
			Markup:       rec.Markup,
			FinalPrice:   brand.MRP.Add(rec.Markup),
			UpdatedAt:    rec.UpdatedAt,
		}
		if rec.Closing != nil {
			closing := SplitBottles(*rec.Closing, brand.PackQuantity)
			item.Closing = &closing
		}
		item.StockValue = item.FinalPrice.Mul(decimal.NewFromInt(int64(rec.Total())))
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].BrandNumber != items[j].BrandNumber {
			return items[i].BrandNumber < items[j].BrandNumber
		}
		return items[i].SizeML < items[j].SizeML
	})
	return items, nil
}

// Rollover carries closing stock of the given date into the next date's
// opening stock. Invoked by the nightly worker at the business-day boundary.
func (s *Service) Rollover(ctx context.Context, date time.Time) (int64, error) {
	return s.repo.CarryForward(ctx, date)
}

func (s *Service) resolveBrand(ctx context.Context, id int64) (catalog.Brand, error) {
	brands, err := s.cat.Resolve(ctx, []int64{id})
	if err != nil {
		return catalog.Brand{}, err
	}
	brand, ok := brands[id]
	if !ok {
		return catalog.Brand{}, catalog.ErrBrandNotFound
	}
	return brand, nil
}

func (s *Service) resolveBrands(ctx context.Context, items []OnboardItem) (map[int64]catalog.Brand, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BrandID)
	}
	return s.cat.Resolve(ctx, ids)
}

func (s *Service) recordAudit(ctx context.Context, shopID int64, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ShopID:   shopID,
		Action:   action,
		Entity:   "daily_stock",
		EntityID: entityID,
		Meta:     meta,
	})
}
