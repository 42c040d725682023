package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryGroceries     Category = "Groceries"
	CategoryUtilities     Category = "Utilities"
	CategoryRent          Category = "Rent"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryFood          Category = "Food"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

type (
	// Category is one of the fixed labels used to classify
	// transactions and budgets.
	Category string

	// Transaction is a single income (positive amount) or expense
	// (negative amount) entry.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		Category    Category  `json:"category,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// TransactionDraft carries the user-supplied fields of a transaction
	// before the store assigns identity and timestamps.
	TransactionDraft struct {
		Amount      Money
		Date        Date
		Description string
		Category    Category
	}

	// TransactionPatch holds optional replacement values for an update.
	// Nil fields are left untouched.
	TransactionPatch struct {
		Amount      *Money
		Date        *Date
		Description *string
		Category    *Category
	}

	// Budget is a spending ceiling for one category in one month.
	// At most one budget exists per (month, category) pair.
	Budget struct {
		ID        string    `json:"id"`
		Month     MonthKey  `json:"month"`
		Category  Category  `json:"category"`
		Amount    Money     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrZeroAmount       = errors.New("amount cannot be zero")
	ErrNegativeBudget   = errors.New("budget amount cannot be negative")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month key")
	ErrShortDescription = errors.New("description too short")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryUtilities,
		CategoryRent,
		CategoryTransport,
		CategoryEntertainment,
		CategoryShopping,
		CategoryFood,
		CategoryHealth,
		CategoryEducation,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// OrOther maps the empty category to CategoryOther. Records persisted
// before normalization may carry an empty category.
func (c Category) OrOther() Category {
	if c == "" {
		return CategoryOther
	}
	return c
}

func (d TransactionDraft) Validate() error {
	if d.Amount.Cents == 0 {
		return ErrZeroAmount
	}
	if d.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(d.Description)) < 3 {
		return ErrShortDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if d.Category != "" && !d.Category.IsValid() {
		return ErrUnknownCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if !b.Category.IsValid() {
		return ErrUnknownCategory
	}
	if b.Amount.Cents < 0 {
		return ErrNegativeBudget
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Amount != nil && p.Amount.Cents == 0 {
		return ErrZeroAmount
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	if p.Description != nil && len(strings.TrimSpace(*p.Description)) < 3 {
		return ErrShortDescription
	}
	if p.Category != nil && *p.Category != "" && !p.Category.IsValid() {
		return ErrUnknownCategory
	}
	return nil
}

// Apply merges the patch into t and returns the result. Timestamps are
// the store's responsibility and are not touched here.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	return t
}
