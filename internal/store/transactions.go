package store

import (
	"context"
	"log/slog"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/kvstore"
)

// TransactionStore owns the transaction collection. Newest entries
// come first. Every mutation re-serializes the whole collection to
// the backend; a failed write keeps the in-memory state authoritative
// and parks the error in the store's error slot.
type TransactionStore struct {
	mu      sync.Mutex
	backend kvstore.Backend
	opts    options
	items   []core.Transaction
	loaded  bool
	errs    *errorSlot
}

// NewTransactionStore loads the persisted collection and returns a
// usable store. A failed or corrupt load degrades to an empty
// collection with the error recorded in the slot; it never prevents
// construction. The loaded flag gates every subsequent write, so a
// save can never run ahead of the initial load and clobber the
// persisted data with an empty collection.
func NewTransactionStore(ctx context.Context, backend kvstore.Backend, opts ...Option) *TransactionStore {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	s := &TransactionStore{
		backend: backend,
		opts:    o,
		errs:    newErrorSlot(o.errorTTL, o.now),
	}

	items, err := kvstore.Load[core.Transaction](ctx, backend, KeyTransactions)
	if err != nil {
		slog.WarnContext(ctx, "Could not load persisted transactions, starting empty",
			"key", KeyTransactions, "error", err)
		s.errs.set(err)
	}
	s.items = items
	s.loaded = true

	return s
}

// Add assigns identity and timestamps to the draft, prepends it to
// the collection and persists. An empty category is normalized to
// Other here, once, so downstream consumers never see a blank.
func (s *TransactionStore) Add(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	now := s.opts.now()
	t := core.Transaction{
		ID:          s.opts.newID(),
		Amount:      draft.Amount,
		Date:        draft.Date,
		Description: draft.Description,
		Category:    draft.Category.OrOther(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append([]core.Transaction{t}, s.items...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	publish(ctx, s.opts.pub, "transaction", "created", t.ID)
	return t, nil
}

// Update merges the patch into the transaction with the given id and
// persists. Returns core.ErrNotFound when no such transaction exists.
func (s *TransactionStore) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

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
		return core.Transaction{}, core.ErrNotFound
	}

	updated := patch.Apply(s.items[idx])
	updated.Category = updated.Category.OrOther()
	updated.UpdatedAt = s.opts.now()
	s.items[idx] = updated
	s.persistLocked(ctx)
	s.mu.Unlock()

	publish(ctx, s.opts.pub, "transaction", "updated", id)
	return updated, nil
}

// Remove deletes the transaction with the given id. Deleting an
// unknown id is not an error; it reports false and leaves the
// collection untouched.
func (s *TransactionStore) Remove(ctx context.Context, id string) bool {
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

	publish(ctx, s.opts.pub, "transaction", "deleted", id)
	return true
}

// List returns a copy of the current snapshot, newest first.
func (s *TransactionStore) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

// Statistics recomputes totals from the live snapshot on every call.
func (s *TransactionStore) Statistics() core.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.items)
}

// Err reports the store's current storage error, if one was recorded
// within the display window.
func (s *TransactionStore) Err() error {
	return s.errs.get()
}

// persistLocked writes the collection through the backend. Callers
// hold the mutex. Write failures are recorded, not returned: the
// in-memory state stays authoritative for the session.
func (s *TransactionStore) persistLocked(ctx context.Context) {
	if !s.loaded {
		return
	}
	if err := kvstore.Save(ctx, s.backend, KeyTransactions, s.items); err != nil {
		slog.ErrorContext(ctx, "Failed to persist transactions",
			"key", KeyTransactions, "count", len(s.items), "error", err)
		s.errs.set(err)
	}
}
