package stock

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
)

// Quantity expresses stock the way invoices do: whole cases plus loose
// bottles. The bottles-per-case ratio comes from the brand's pack quantity.
type Quantity struct {
	Cases   int `json:"cases"`
	Bottles int `json:"bottles"`
}

// TotalBottles converts to a flat bottle count. packQty must be positive.
func (q Quantity) TotalBottles(packQty int) int {
	return q.Cases*packQty + q.Bottles
}

// Normalize carries loose bottles exceeding a full case into the case count.
// The carry applies unconditionally, regardless of whether cases is zero.
func (q Quantity) Normalize(packQty int) Quantity {
	if packQty <= 0 || q.Bottles < packQty {
		return q
	}
	return Quantity{
		Cases:   q.Cases + q.Bottles/packQty,
		Bottles: q.Bottles % packQty,
	}
}

// SplitBottles converts a flat bottle count back into cases and bottles.
func SplitBottles(total, packQty int) Quantity {
	if packQty <= 0 {
		return Quantity{Bottles: total}
	}
	return Quantity{Cases: total / packQty, Bottles: total % packQty}
}

// DailyRecord tracks one brand in one shop for one business date.
// Bottle counts are flat; the case/bottle split is derived at read time.
type DailyRecord struct {
	ID           int64           `json:"id"`
	ShopID       int64           `json:"shopId"`
	BrandID      int64           `json:"brandId"`
	BusinessDate time.Time       `json:"businessDate"`
	Opening      int             `json:"openingBottles"`
	Received     int             `json:"receivedBottles"`
	Closing      *int            `json:"closingBottles,omitempty"`
	Markup       decimal.Decimal `json:"markup"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Total is the stock available during the day.
func (d DailyRecord) Total() int {
	return d.Opening + d.Received
}

// Sold returns bottles sold once the closing count is recorded.
func (d DailyRecord) Sold() int {
	if d.Closing == nil {
		return 0
	}
	return d.Total() - *d.Closing
}

// OnboardItem seeds a brand into a shop's inventory.
type OnboardItem struct {
	BrandID  int64           `json:"brandId" validate:"required,gt=0"`
	Quantity Quantity        `json:"quantity"`
	Markup   decimal.Decimal `json:"markup"`
}

// ReceiveInput records stock received from the depot during the day.
type ReceiveInput struct {
	BrandID  int64    `json:"brandId" validate:"required,gt=0"`
	Quantity Quantity `json:"quantity"`
}

// ClosingInput records the end-of-day physical count.
type ClosingInput struct {
	BrandID int64    `json:"brandId" validate:"required,gt=0"`
	Counted Quantity `json:"counted"`
}

// ShiftInput moves stock between two shops.
type ShiftInput struct {
	Code         string   `json:"code"`
	SrcShopID    int64    `json:"srcShopId" validate:"required,gt=0"`
	DstShopID    int64    `json:"dstShopId" validate:"required,gt=0"`
	BrandID      int64    `json:"brandId" validate:"required,gt=0"`
	Quantity     Quantity `json:"quantity"`
	SupplierName string   `json:"supplierName"`
	SupplierCode string   `json:"supplierCode"`
}

// ShiftRecord is one signed leg of a shop-to-shop transfer. Outbound legs
// carry a negative bottle count.
type ShiftRecord struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	ShopID       int64     `json:"shopId"`
	PeerShopID   int64     `json:"peerShopId"`
	BrandID      int64     `json:"brandId"`
	QtyBottles   int       `json:"qtyBottles"`
	SupplierName string    `json:"supplierName"`
	SupplierCode string    `json:"supplierCode"`
	BusinessDate time.Time `json:"businessDate"`
	PostedAt     time.Time `json:"postedAt"`
}

// CurrentStockItem is the joined view returned to the stock screens.
type CurrentStockItem struct {
	BrandID      int64           `json:"brandId"`
	BrandNumber  string          `json:"brandNumber"`
	Name         string          `json:"name"`
	Kind         catalog.Kind    `json:"kind"`
	SizeML       int             `json:"sizeML"`
	PackQuantity int             `json:"packQuantity"`
	Opening      Quantity        `json:"opening"`
	Received     Quantity        `json:"received"`
	Total        Quantity        `json:"total"`
	Closing      *Quantity       `json:"closing,omitempty"`
	MRP          decimal.Decimal `json:"mrp"`
	Markup       decimal.Decimal `json:"markup"`
	FinalPrice   decimal.Decimal `json:"finalPrice"`
	StockValue   decimal.Decimal `json:"stockValue"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

var (
	// ErrInvalidQuantity indicates a non-positive or malformed quantity.
	ErrInvalidQuantity = errors.New("stock: quantity must be positive")
	// ErrNegativeStock triggered when a movement would drive stock below zero.
	ErrNegativeStock = errors.New("stock: negative stock not allowed")
	// ErrSameShop indicates a transfer onto itself.
	ErrSameShop = errors.New("stock: source and destination shop must differ")
	// ErrAlreadyOnboarded indicates the brand already has a record for the date.
	ErrAlreadyOnboarded = errors.New("stock: brand already onboarded")
	// ErrRecordNotFound indicates no daily record for shop+brand+date.
	ErrRecordNotFound = errors.New("stock: record not found")
	// ErrClosingExceedsTotal indicates a counted closing above available stock.
	ErrClosingExceedsTotal = errors.New("stock: closing cannot exceed available stock")
)
