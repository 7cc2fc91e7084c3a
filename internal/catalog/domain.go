package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a brand into one of the liquor categories used for
// report roll-ups. The order of KindOrder is the order categories appear in
// printed reports and must stay stable.
type Kind string

const (
	KindWhisky       Kind = "Whisky"
	KindBrandy       Kind = "Brandy"
	KindRum          Kind = "Rum"
	KindGin          Kind = "Gin"
	KindVodka        Kind = "Vodka"
	KindScotch       Kind = "Scotch"
	KindWine         Kind = "Wine"
	KindBeer         Kind = "Beer"
	KindReadyToDrink Kind = "Ready To Drink"
)

// KindOrder lists every kind in report display order.
var KindOrder = []Kind{
	KindWhisky,
	KindBrandy,
	KindRum,
	KindGin,
	KindVodka,
	KindScotch,
	KindWine,
	KindBeer,
	KindReadyToDrink,
}

// KindRank returns the display position of a kind, len(KindOrder) for
// unknown values so they sort last.
func KindRank(k Kind) int {
	for i, known := range KindOrder {
		if known == k {
			return i
		}
	}
	return len(KindOrder)
}

// ValidKind reports whether k is a known liquor kind.
func ValidKind(k Kind) bool {
	return KindRank(k) < len(KindOrder)
}

// Brand is a master catalog entry shared by all shops. Prices are
// government-fixed per brand number and size.
type Brand struct {
	ID                int64           `json:"id"`
	BrandNumber       string          `json:"brandNumber"`
	Name              string          `json:"name"`
	Kind              Kind            `json:"kind"`
	PackType          string          `json:"packType"`
	PackQuantity      int             `json:"packQuantity"`
	SizeML            int             `json:"sizeML"`
	MRP               decimal.Decimal `json:"mrp"`
	InvoicePrice      decimal.Decimal `json:"invoicePrice"`
	SpecialMargin     decimal.Decimal `json:"specialMargin"`
	SpecialExciseCess decimal.Decimal `json:"specialExciseCess"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ListFilter narrows brand listings.
type ListFilter struct {
	Kind   Kind
	Search string
	Page   int
	Limit  int
}

// CreateInput carries a new catalog entry.
type CreateInput struct {
	BrandNumber       string          `json:"brandNumber" validate:"required"`
	Name              string          `json:"name" validate:"required"`
	Kind              Kind            `json:"kind" validate:"required"`
	PackType          string          `json:"packType" validate:"required"`
	PackQuantity      int             `json:"packQuantity" validate:"required,gt=0"`
	SizeML            int             `json:"sizeML" validate:"required,gt=0"`
	MRP               decimal.Decimal `json:"mrp"`
	InvoicePrice      decimal.Decimal `json:"invoicePrice"`
	SpecialMargin     decimal.Decimal `json:"specialMargin"`
	SpecialExciseCess decimal.Decimal `json:"specialExciseCess"`
}

// UpdateInput carries catalog mutations; the brand number is immutable.
type UpdateInput struct {
	Name              string          `json:"name" validate:"required"`
	Kind              Kind            `json:"kind" validate:"required"`
	PackType          string          `json:"packType" validate:"required"`
	PackQuantity      int             `json:"packQuantity" validate:"required,gt=0"`
	SizeML            int             `json:"sizeML" validate:"required,gt=0"`
	MRP               decimal.Decimal `json:"mrp"`
	InvoicePrice      decimal.Decimal `json:"invoicePrice"`
	SpecialMargin     decimal.Decimal `json:"specialMargin"`
	SpecialExciseCess decimal.Decimal `json:"specialExciseCess"`
}

// ErrBrandNotFound indicates a missing catalog entry.
var ErrBrandNotFound = errors.New("catalog: brand not found")

// ErrDuplicateBrand indicates a brand number + size collision.
var ErrDuplicateBrand = errors.New("catalog: brand already registered")

// ErrUnknownKind indicates a kind outside KindOrder.
var ErrUnknownKind = errors.New("catalog: unknown liquor kind")

// ErrNegativePrice indicates a price below zero.
var ErrNegativePrice = errors.New("catalog: prices must be >= 0")
