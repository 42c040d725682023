package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/kvstore"
)

// BudgetStore owns the (month, category) budget collection. The pair
// is unique: Upsert replaces the amount of an existing entry instead
// of inserting a duplicate.
type BudgetStore struct {
	mu      sync.Mutex
	backend kvstore.Backend
	opts    options
	items   []core.Budget
	loaded  bool
	errs    *errorSlot
}

// NewBudgetStore loads the persisted collection; same soft-failure
// and load-before-save contract as NewTransactionStore.
func NewBudgetStore(ctx context.Context, backend kvstore.Backend, opts ...Option) *BudgetStore {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	s := &BudgetStore{
		backend: backend,
		opts:    o,
		errs:    newErrorSlot(o.errorTTL, o.now),
	}

	items, err := kvstore.Load[core.Budget](ctx, backend, KeyBudgets)
	if err != nil {
		slog.WarnContext(ctx, "Could not load persisted budgets, starting empty",
			"key", KeyBudgets, "error", err)
		s.errs.set(err)
	}
	s.items = items
	s.loaded = true

	return s
}

// Upsert sets the budget for (month, category). An existing entry
// keeps its id and creation time and gets the new amount; otherwise a
// fresh budget is created. Either way the collection is persisted and
// the resulting budget returned.
func (s *BudgetStore) Upsert(ctx context.Context, month core.MonthKey, category core.Category, amount core.Money) (core.Budget, error) {
	candidate := core.Budget{Month: month, Category: category, Amount: amount}
	if err := candidate.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	now := s.opts.now()

	op := "updated"
	idx := -1
	for i := range s.items {
		if s.items[i].Month == month && s.items[i].Category == category {
			idx = i
			break
		}
	}

	var result core.Budget
	if idx >= 0 {
		s.items[idx].Amount = amount
		s.items[idx].UpdatedAt = now
		result = s.items[idx]
	} else {
		op = "created"
		result = core.Budget{
			ID:        s.opts.newID(),
			Month:     month,
			Category:  category,
			Amount:    amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.items = append(s.items, result)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	publish(ctx, s.opts.pub, "budget", op, result.ID)
	return result, nil
}

// Remove deletes the budget with the given id. An unknown id reports
// false and changes nothing.
func (s *BudgetStore) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	publish(ctx, s.opts.pub, "budget", "deleted", id)
	return true
}

// List returns a copy of the full collection.
func (s *BudgetStore) List() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.items...)
}

// ListForMonth returns the budgets whose month matches exactly.
func (s *BudgetStore) ListForMonth(month core.MonthKey) []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.items {
		if b.Month == month {
			out = append(out, b)
		}
	}
	return out
}

// Months returns the distinct months with at least one budget, sorted
// descending so the latest month comes first. YYYY-MM keys sort
// correctly as strings.
func (s *BudgetStore) Months() []core.MonthKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[core.MonthKey]bool)
	var out []core.MonthKey
	for _, b := range s.items {
		if seen[b.Month] {
			continue
		}
		seen[b.Month] = true
		out = append(out, b.Month)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// Err reports the store's current storage error, if any.
func (s *BudgetStore) Err() error {
	return s.errs.get()
}

func (s *BudgetStore) persistLocked(ctx context.Context) {
	if !s.loaded {
		return
	}
	if err := kvstore.Save(ctx, s.backend, KeyBudgets, s.items); err != nil {
		slog.ErrorContext(ctx, "Failed to persist budgets",
			"key", KeyBudgets, "count", len(s.items), "error", err)
		s.errs.set(err)
	}
}
