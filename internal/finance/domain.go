package finance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType distinguishes money in from money out.
type EntryType string

const (
	EntryIncome  EntryType = "INCOME"
	EntryExpense EntryType = "EXPENSE"
)

// Entry is a single income or expense line for a shop's business date.
type Entry struct {
	ID           int64           `json:"id"`
	ShopID       int64           `json:"shopId"`
	Type         EntryType       `json:"type"`
	BusinessDate time.Time       `json:"businessDate"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// EntryInput creates or replaces an entry.
type EntryInput struct {
	Type         EntryType       `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	BusinessDate string          `json:"businessDate" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
}

// DaySummary aggregates one business date. Derived data, rebuilt from
// entries on every request.
type DaySummary struct {
	BusinessDate time.Time       `json:"businessDate"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`
}

var (
	// ErrEntryNotFound indicates a missing entry.
	ErrEntryNotFound = errors.New("finance: entry not found")
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("finance: amount must be positive")
)
