package core

import (
	"errors"
	"strings"
	"testing"
)

func TestTransactionDraftValidate(t *testing.T) {
	valid := TransactionDraft{
		Amount:      Money{Cents: -5000},
		Date:        NewDate(2025, 1, 15),
		Description: "Weekly groceries",
		Category:    CategoryGroceries,
	}

	tests := []struct {
		name    string
		mutate  func(d TransactionDraft) TransactionDraft
		wantErr error
	}{
		{
			name:   "valid draft",
			mutate: func(d TransactionDraft) TransactionDraft { return d },
		},
		{
			name: "zero amount",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Amount = Money{}
				return d
			},
			wantErr: ErrZeroAmount,
		},
		{
			name: "zero date",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Date = Date{}
				return d
			},
			wantErr: ErrInvalidDate,
		},
		{
			name: "short description",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Description = "ab"
				return d
			},
			wantErr: ErrShortDescription,
		},
		{
			name: "whitespace-only description",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Description = "   x   "
				return d
			},
			wantErr: ErrShortDescription,
		},
		{
			name: "unknown category",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Category = "Gadgets"
				return d
			},
			wantErr: ErrUnknownCategory,
		},
		{
			name: "empty category allowed",
			mutate: func(d TransactionDraft) TransactionDraft {
				d.Category = ""
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate returned error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("long description", func(t *testing.T) {
		d := valid
		d.Description = strings.Repeat("x", 201)
		if err := d.Validate(); err == nil {
			t.Fatal("expected error for description over 200 characters")
		}
	})
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{Month: "2025-01", Category: CategoryGroceries, Amount: Money{Cents: 10000}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	bad := valid
	bad.Month = "January"
	if !errors.Is(bad.Validate(), ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth for month %q", bad.Month)
	}

	bad = valid
	bad.Category = ""
	if !errors.Is(bad.Validate(), ErrUnknownCategory) {
		t.Error("expected ErrUnknownCategory for empty category")
	}

	bad = valid
	bad.Amount = Money{Cents: -1}
	if !errors.Is(bad.Validate(), ErrNegativeBudget) {
		t.Error("expected ErrNegativeBudget for negative amount")
	}

	zero := valid
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Errorf("zero budget should be valid, got %v", err)
	}
}

func TestTransactionPatchApply(t *testing.T) {
	original := Transaction{
		ID:          "t1",
		Amount:      Money{Cents: -1000},
		Date:        NewDate(2025, 1, 10),
		Description: "Old description",
		Category:    CategoryFood,
	}

	newAmount := Money{Cents: -2500}
	newDesc := "New description"
	patch := TransactionPatch{Amount: &newAmount, Description: &newDesc}

	got := patch.Apply(original)
	if got.Amount != newAmount {
		t.Errorf("Amount = %+v, want %+v", got.Amount, newAmount)
	}
	if got.Description != newDesc {
		t.Errorf("Description = %q, want %q", got.Description, newDesc)
	}
	if got.Date != original.Date {
		t.Errorf("Date changed: %v", got.Date)
	}
	if got.Category != original.Category {
		t.Errorf("Category changed: %v", got.Category)
	}
	if original.Amount.Cents != -1000 {
		t.Error("Apply mutated its input")
	}
}

func TestCategoryOrOther(t *testing.T) {
	if got := Category("").OrOther(); got != CategoryOther {
		t.Errorf("empty category = %q, want %q", got, CategoryOther)
	}
	if got := CategoryRent.OrOther(); got != CategoryRent {
		t.Errorf("named category = %q, want %q", got, CategoryRent)
	}
}
