package reports

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
)

// Type selects which movement a report aggregates.
type Type string

const (
	// TypeStockLifted totals stock received from the depot.
	TypeStockLifted Type = "stock-lifted"
	// TypeSales totals bottles sold against closing counts.
	TypeSales Type = "sales"
)

// Valid reports whether t is a known report type.
func (t Type) Valid() bool {
	return t == TypeStockLifted || t == TypeSales
}

// DayMovement is one brand's movement on one business date.
type DayMovement struct {
	BrandID  int64
	Received int
	Sold     int
}

// BrandRow is one aggregated report line, keyed by brand number + size.
type BrandRow struct {
	BrandID      int64           `json:"brandId"`
	BrandNumber  string          `json:"brandNumber"`
	Name         string          `json:"name"`
	Kind         catalog.Kind    `json:"kind"`
	SizeML       int             `json:"sizeML"`
	PackQuantity int             `json:"packQuantity"`
	Quantity     stock.Quantity  `json:"quantity"`
	Bottles      int             `json:"bottles"`
	InvoiceValue decimal.Decimal `json:"invoiceValue"`
	MRPValue     decimal.Decimal `json:"mrpValue"`
}

// KindRollup aggregates a liquor category across brands.
type KindRollup struct {
	Kind     catalog.Kind    `json:"kind"`
	Bottles  int             `json:"bottles"`
	MRPValue decimal.Decimal `json:"mrpValue"`
	// Percent is MRPValue over the report grand total, 0 when the grand
	// total is zero.
	Percent float64 `json:"percent"`
}

// Report is a fully aggregated date-range report.
type Report struct {
	ShopID            int64           `json:"shopId"`
	Type              Type            `json:"type"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Rows              []BrandRow      `json:"rows"`
	Kinds             []KindRollup    `json:"kinds"`
	TotalBottles      int             `json:"totalBottles"`
	TotalInvoiceValue decimal.Decimal `json:"totalInvoiceValue"`
	TotalMRPValue     decimal.Decimal `json:"totalMRPValue"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}

var (
	// ErrUnknownType indicates an unsupported report type.
	ErrUnknownType = errors.New("reports: unknown report type")
	// ErrInvalidRange indicates to precedes from.
	ErrInvalidRange = errors.New("reports: invalid date range")
)
