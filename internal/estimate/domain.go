package estimate

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/stock"
)

// LineInput selects a brand and the quantity to lift from the depot.
type LineInput struct {
	BrandID  int64          `json:"brandId" validate:"required,gt=0"`
	Quantity stock.Quantity `json:"quantity"`
}

// ComputeInput is a full estimate request.
type ComputeInput struct {
	Lines []LineInput `json:"lines" validate:"required,min=1,dive"`
	// TenTimesLifted marks shops whose annual lifting crossed ten times the
	// licensed quota, attracting retail excise turnover tax on the invoice.
	TenTimesLifted bool `json:"tenTimesLifted"`
}

// Line is a priced estimate row.
type Line struct {
	BrandID       int64           `json:"brandId"`
	BrandNumber   string          `json:"brandNumber"`
	Name          string          `json:"name"`
	SizeML        int             `json:"sizeML"`
	PackQuantity  int             `json:"packQuantity"`
	Quantity      stock.Quantity  `json:"quantity"`
	TotalBottles  int             `json:"totalBottles"`
	InvoicePrice  decimal.Decimal `json:"invoicePrice"`
	InvoiceAmount decimal.Decimal `json:"invoiceAmount"`
}

// Totals carries the estimate tax breakdown.
//
// The TCS base changed between revisions of the excise rules; this module
// levies 1% on net invoice value plus retail excise turnover tax.
type Totals struct {
	InvoiceValue            decimal.Decimal `json:"invoiceValue"`
	MRPRoundingOff          decimal.Decimal `json:"mrpRoundingOff"`
	NetInvoiceValue         decimal.Decimal `json:"netInvoiceValue"`
	RetailExciseTurnoverTax decimal.Decimal `json:"retailExciseTurnoverTax"`
	SpecialExciseCess       decimal.Decimal `json:"specialExciseCess"`
	TCS                     decimal.Decimal `json:"tcs"`
	GrandTotal              decimal.Decimal `json:"grandTotal"`
}

// Estimate is a computed, optionally persisted, indent estimate.
type Estimate struct {
	ID             int64     `json:"id,omitempty"`
	ShopID         int64     `json:"shopId"`
	TenTimesLifted bool      `json:"tenTimesLifted"`
	Lines          []Line    `json:"lines"`
	Totals         Totals    `json:"totals"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

var (
	// ErrNoLines indicates an estimate without line items.
	ErrNoLines = errors.New("estimate: at least one line required")
	// ErrEstimateNotFound indicates a missing draft.
	ErrEstimateNotFound = errors.New("estimate: draft not found")
)
