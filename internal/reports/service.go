package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
)

// fetchConcurrency bounds the per-day fan-out against Postgres.
const fetchConcurrency = 4

// CatalogPort resolves brands for report joins.
type CatalogPort interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]catalog.Brand, error)
}

// Renderer converts report HTML into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Service builds and caches date-range reports.
type Service struct {
	repo     Repository
	cat      CatalogPort
	redis    *redis.Client
	ttl      time.Duration
	renderer Renderer
	group    singleflight.Group
	now      func() time.Time
}

// NewService builds Service. redisClient may be nil; reports are then
// rebuilt on every request.
func NewService(repo Repository, cat CatalogPort, redisClient *redis.Client, ttl time.Duration, renderer Renderer) *Service {
	return &Service{
		repo:     repo,
		cat:      cat,
		redis:    redisClient,
		ttl:      ttl,
		renderer: renderer,
		now:      time.Now,
	}
}

// Build aggregates one report over a date range. Identical concurrent
// requests collapse into a single build, and results are cached in Redis.
func (s *Service) Build(ctx context.Context, shopID int64, typ Type, from, to time.Time) (Report, error) {
	if shopID <= 0 {
		return Report{}, shared.ErrShopRequired
	}
	if !typ.Valid() {
		return Report{}, ErrUnknownType
	}
	if to.Before(from) {
		return Report{}, ErrInvalidRange
	}

	key := fmt.Sprintf("reports:%d:%s:%s:%s", shopID, typ,
		shared.FormatBusinessDate(from), shared.FormatBusinessDate(to))

	if s.redis != nil {
		payload, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var cached Report
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		report, err := s.build(ctx, shopID, typ, from, to)
		if err != nil {
			return nil, err
		}
		if s.redis != nil {
			if raw, err := json.Marshal(report); err == nil {
				_ = s.redis.Set(ctx, key, raw, s.ttl).Err()
			}
		}
		return report, nil
	})
	if err != nil {
		return Report{}, err
	}
	return result.(Report), nil
}

func (s *Service) build(ctx context.Context, shopID int64, typ Type, from, to time.Time) (Report, error) {
	dates := shared.DatesBetween(from, to)

	var (
		mu       sync.Mutex
		perBrand = map[int64]int{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, date := range dates {
		date := date
		g.Go(func() error {
			movements, err := s.repo.MovementsForDate(gctx, shopID, date)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, m := range movements {
				switch typ {
				case TypeStockLifted:
					perBrand[m.BrandID] += m.Received
				case TypeSales:
					perBrand[m.BrandID] += m.Sold
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	ids := make([]int64, 0, len(perBrand))
	for id := range perBrand {
		ids = append(ids, id)
	}
	brands, err := s.cat.Resolve(ctx, ids)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ShopID:      shopID,
		Type:        typ,
		From:        from,
		To:          to,
		GeneratedAt: s.now().UTC(),
	}
	kindBottles := map[catalog.Kind]int{}
	kindValue := map[catalog.Kind]decimal.Decimal{}
	for id, bottles := range perBrand {
		if bottles == 0 {
			continue
		}
		brand, ok := brands[id]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(bottles))
		row := BrandRow{
			BrandID:      brand.ID,
			BrandNumber:  brand.BrandNumber,
			Name:         brand.Name,
			Kind:         brand.Kind,
			SizeML:       brand.SizeML,
			PackQuantity: brand.PackQuantity,
			Quantity:     stock.SplitBottles(bottles, brand.PackQuantity),
			Bottles:      bottles,
			InvoiceValue: brand.InvoicePrice.Mul(qty),
			MRPValue:     brand.MRP.Mul(qty),
		}
		report.Rows = append(report.Rows, row)
		report.TotalBottles += bottles
		report.TotalInvoiceValue = report.TotalInvoiceValue.Add(row.InvoiceValue)
		report.TotalMRPValue = report.TotalMRPValue.Add(row.MRPValue)
		kindBottles[brand.Kind] += bottles
		kindValue[brand.Kind] = kindValue[brand.Kind].Add(row.MRPValue)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		ri, rj := report.Rows[i], report.Rows[j]
		if ki, kj := catalog.KindRank(ri.Kind), catalog.KindRank(rj.Kind); ki != kj {
			return ki < kj
		}
		if ri.BrandNumber != rj.BrandNumber {
			return ri.BrandNumber < rj.BrandNumber
		}
		return ri.SizeML < rj.SizeML
	})

	// Every known kind appears in the roll-up, zero rows included, to keep
	// the printed category table a fixed shape.
	for _, kind := range catalog.KindOrder {
		rollup := KindRollup{
			Kind:     kind,
			Bottles:  kindBottles[kind],
			MRPValue: kindValue[kind],
		}
		if report.TotalMRPValue.IsPositive() {
			percent, _ := rollup.MRPValue.
				Div(report.TotalMRPValue).
				Mul(decimal.NewFromInt(100)).
				Round(2).
				Float64()
			rollup.Percent = percent
		}
		report.Kinds = append(report.Kinds, rollup)
	}
	return report, nil
}

// RenderPDF renders the report as a printable PDF document.
func (s *Service) RenderPDF(ctx context.Context, report Report) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("reports: pdf renderer not configured")
	}
	html, err := renderHTML(report)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderHTML(ctx, html)
}
