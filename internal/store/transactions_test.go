package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/kvstore"
)

func draft(amount int64, description string, category core.Category) core.TransactionDraft {
	return core.TransactionDraft{
		Amount:      core.Money{Cents: amount},
		Date:        core.NewDate(2025, 1, 15),
		Description: description,
		Category:    category,
	}
}

// sequentialIDs returns an id func yielding t1, t2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func TestTransactionStoreAdd(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemory()
	s := NewTransactionStore(ctx, backend, WithIDFunc(sequentialIDs()))

	added, err := s.Add(ctx, draft(-5000, "Weekly groceries", core.CategoryGroceries))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if added.ID != "t1" {
		t.Errorf("ID = %q, want t1", added.ID)
	}
	if added.CreatedAt.IsZero() || added.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	// Empty category is normalized at creation.
	other, err := s.Add(ctx, draft(-100, "Mystery purchase", ""))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if other.Category != core.CategoryOther {
		t.Errorf("Category = %q, want Other", other.Category)
	}

	// Newest first.
	list := s.List()
	if len(list) != 2 {
		t.Fatalf("List returned %d items, want 2", len(list))
	}
	if list[0].ID != "t2" || list[1].ID != "t1" {
		t.Errorf("order = %s, %s, want newest first", list[0].ID, list[1].ID)
	}
}

func TestTransactionStoreAddRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(ctx, kvstore.NewMemory())

	if _, err := s.Add(ctx, draft(0, "Zero amount entry", "")); !errors.Is(err, core.ErrZeroAmount) {
		t.Errorf("Add(zero amount) = %v, want ErrZeroAmount", err)
	}
	if len(s.List()) != 0 {
		t.Error("rejected draft was added")
	}
}

func TestTransactionStorePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemory()

	first := NewTransactionStore(ctx, backend)
	if _, err := first.Add(ctx, draft(-2500, "Bus ticket", core.CategoryTransport)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	second := NewTransactionStore(ctx, backend)
	list := second.List()
	if len(list) != 1 {
		t.Fatalf("reloaded store has %d items, want 1", len(list))
	}
	if list[0].Description != "Bus ticket" {
		t.Errorf("Description = %q", list[0].Description)
	}
}

func TestTransactionStoreUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewTransactionStore(ctx, kvstore.NewMemory(), WithClock(clock), WithIDFunc(sequentialIDs()))

	added, err := s.Add(ctx, draft(-5000, "Weekly groceries", core.CategoryGroceries))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	now = now.Add(time.Hour)
	newAmount := core.Money{Cents: -6000}
	updated, err := s.Update(ctx, added.ID, core.TransactionPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Amount != newAmount {
		t.Errorf("Amount = %+v, want %+v", updated.Amount, newAmount)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("UpdatedAt not advanced")
	}
	if updated.Description != "Weekly groceries" {
		t.Errorf("unpatched field changed: %q", updated.Description)
	}

	_, err = s.Update(ctx, "missing", core.TransactionPatch{Amount: &newAmount})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
}

func TestTransactionStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(ctx, kvstore.NewMemory(), WithIDFunc(sequentialIDs()))

	added, err := s.Add(ctx, draft(-100, "Coffee to go", core.CategoryFood))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if !s.Remove(ctx, added.ID) {
		t.Error("Remove(existing) = false, want true")
	}
	if s.Remove(ctx, added.ID) {
		t.Error("Remove(removed) = true, want false")
	}
	if s.Remove(ctx, "never-existed") {
		t.Error("Remove(unknown) = true, want false")
	}
	if len(s.List()) != 0 {
		t.Error("collection not empty after remove")
	}
}

func TestTransactionStoreStatistics(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(ctx, kvstore.NewMemory())

	if _, err := s.Add(ctx, draft(300000, "Monthly salary", core.CategoryOther)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if _, err := s.Add(ctx, draft(-5000, "Weekly groceries", core.CategoryGroceries)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	stats := s.Statistics()
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
	if stats.Income.Cents != 300000 {
		t.Errorf("Income = %d, want 300000", stats.Income.Cents)
	}
	if stats.Expenses.Cents != 5000 {
		t.Errorf("Expenses = %d, want 5000", stats.Expenses.Cents)
	}
	if stats.Balance.Cents != 295000 {
		t.Errorf("Balance = %d, want 295000", stats.Balance.Cents)
	}
}

// brokenBackend fails configurable operations while recording Puts.
type brokenBackend struct {
	getErr error
	putErr error
	puts   int
}

func (b *brokenBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, b.getErr
}

func (b *brokenBackend) Put(context.Context, string, []byte) error {
	b.puts++
	return b.putErr
}

func (b *brokenBackend) Close() error { return nil }

func TestTransactionStoreSurvivesWriteFailure(t *testing.T) {
	ctx := context.Background()
	backend := &brokenBackend{putErr: errors.New("disk full")}
	s := NewTransactionStore(ctx, backend)

	added, err := s.Add(ctx, draft(-5000, "Weekly groceries", core.CategoryGroceries))
	if err != nil {
		t.Fatalf("Add should succeed despite write failure, got %v", err)
	}
	if backend.puts == 0 {
		t.Fatal("no persist attempted")
	}

	// In-memory state stays authoritative.
	list := s.List()
	if len(list) != 1 || list[0].ID != added.ID {
		t.Fatalf("List = %v, want the added transaction", list)
	}

	// The failure is visible as a warning.
	err = s.Err()
	var writeErr *kvstore.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Err() = %v, want *kvstore.WriteError", err)
	}
}

func TestTransactionStoreErrExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	backend := &brokenBackend{putErr: errors.New("disk full")}
	s := NewTransactionStore(ctx, backend, WithClock(clock), WithErrorTTL(10*time.Second))

	if _, err := s.Add(ctx, draft(-100, "Coffee to go", core.CategoryFood)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if s.Err() == nil {
		t.Fatal("expected visible error right after failure")
	}

	now = now.Add(11 * time.Second)
	if err := s.Err(); err != nil {
		t.Fatalf("error should expire after TTL, got %v", err)
	}
}

func TestTransactionStoreStartsEmptyOnCorruptLoad(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemory()
	if err := backend.Put(ctx, KeyTransactions, []byte("{corrupt")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	s := NewTransactionStore(ctx, backend)
	if len(s.List()) != 0 {
		t.Error("corrupt load should yield empty collection")
	}
	var readErr *kvstore.ReadError
	if !errors.As(s.Err(), &readErr) {
		t.Errorf("Err() = %v, want *kvstore.ReadError", s.Err())
	}

	// New writes still go through and replace the corrupt record.
	if _, err := s.Add(ctx, draft(-100, "Fresh start", core.CategoryOther)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	reloaded := NewTransactionStore(ctx, backend)
	if len(reloaded.List()) != 1 {
		t.Errorf("reloaded store has %d items, want 1", len(reloaded.List()))
	}
}

// TestTransactionStoreMatchesReferenceModel drives the store with a
// seeded random sequence of add/update/remove operations and checks
// after every step that List matches a plain-slice reference model.
func TestTransactionStoreMatchesReferenceModel(t *testing.T) {
	ctx := context.Background()
	s := NewTransactionStore(ctx, kvstore.NewMemory(), WithIDFunc(sequentialIDs()))
	rng := rand.New(rand.NewSource(42))

	categories := core.Categories()
	var model []core.Transaction

	for step := 0; step < 400; step++ {
		op := rng.Intn(3)
		if len(model) == 0 {
			op = 0
		}

		switch op {
		case 0: // add
			amount := int64(rng.Intn(20000) + 1)
			if rng.Intn(2) == 0 {
				amount = -amount
			}
			category := categories[rng.Intn(len(categories))]
			if rng.Intn(5) == 0 {
				category = ""
			}
			added, err := s.Add(ctx, core.TransactionDraft{
				Amount:      core.Money{Cents: amount},
				Date:        core.NewDate(2025, rng.Intn(12)+1, rng.Intn(28)+1),
				Description: fmt.Sprintf("entry %d", step),
				Category:    category,
			})
			if err != nil {
				t.Fatalf("step %d: Add returned error: %v", step, err)
			}
			model = append([]core.Transaction{added}, model...)

		case 1: // update
			idx := rng.Intn(len(model))
			desc := fmt.Sprintf("updated entry %d", step)
			updated, err := s.Update(ctx, model[idx].ID, core.TransactionPatch{Description: &desc})
			if err != nil {
				t.Fatalf("step %d: Update returned error: %v", step, err)
			}
			model[idx] = updated

		default: // remove, sometimes of an id that never existed
			if rng.Intn(4) == 0 {
				if s.Remove(ctx, fmt.Sprintf("missing-%d", step)) {
					t.Fatalf("step %d: Remove(unknown) = true", step)
				}
				break
			}
			idx := rng.Intn(len(model))
			if !s.Remove(ctx, model[idx].ID) {
				t.Fatalf("step %d: Remove(existing) = false", step)
			}
			model = append(model[:idx], model[idx+1:]...)
		}

		got := s.List()
		if len(got) != len(model) {
			t.Fatalf("step %d: List has %d items, model has %d", step, len(got), len(model))
		}
		for i := range got {
			if got[i] != model[i] {
				t.Fatalf("step %d: item %d = %+v, model has %+v", step, i, got[i], model[i])
			}
		}
	}
}

// recordingPublisher captures change events.
type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, entity, op, id string) error {
	p.events = append(p.events, entity+":"+op+":"+id)
	return p.err
}

func TestTransactionStorePublishesChanges(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := NewTransactionStore(ctx, kvstore.NewMemory(),
		WithIDFunc(sequentialIDs()), WithPublisher(pub))

	added, err := s.Add(ctx, draft(-100, "Coffee to go", core.CategoryFood))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	newDesc := "Espresso to go"
	if _, err := s.Update(ctx, added.ID, core.TransactionPatch{Description: &newDesc}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	s.Remove(ctx, added.ID)

	want := []string{
		"transaction:created:t1",
		"transaction:updated:t1",
		"transaction:deleted:t1",
	}
	if len(pub.events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(pub.events), len(want), pub.events)
	}
	for i, w := range want {
		if pub.events[i] != w {
			t.Errorf("event %d = %q, want %q", i, pub.events[i], w)
		}
	}
}

func TestTransactionStorePublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewTransactionStore(ctx, kvstore.NewMemory(), WithPublisher(pub))

	if _, err := s.Add(ctx, draft(-100, "Coffee to go", core.CategoryFood)); err != nil {
		t.Fatalf("Add should succeed despite publish failure, got %v", err)
	}
	if len(s.List()) != 1 {
		t.Error("mutation lost")
	}
}
