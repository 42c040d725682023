// Package store owns the application's mutable state: the transaction
// collection and the budget collection. Each store keeps its records
// in memory as the authoritative copy, re-serializes the full
// collection on every mutation, and soaks up persistence failures so
// they never break an unrelated operation.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fixed persistence keys. Each store owns exactly one record.
const (
	KeyTransactions = "bilancio-transactions"
	KeyBudgets      = "bilancio-budgets"
)

// DefaultErrorTTL is how long a recorded storage error stays visible
// before expiring from the slot.
const DefaultErrorTTL = 10 * time.Second

// Publisher receives change notifications after successful mutations.
// Implementations must tolerate being called concurrently; a nil
// Publisher disables notifications.
type Publisher interface {
	PublishChange(ctx context.Context, entity, op, id string) error
}

type (
	clockFunc func() time.Time
	idFunc    func() string
)

// Option configures a store at construction time.
type Option func(*options)

type options struct {
	now      clockFunc
	newID    idFunc
	pub      Publisher
	errorTTL time.Duration
}

func defaultOptions() options {
	return options{
		now:      time.Now,
		newID:    uuid.NewString,
		errorTTL: DefaultErrorTTL,
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc overrides ID generation. Used in tests.
func WithIDFunc(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithPublisher attaches a change-event publisher.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.pub = p }
}

// WithErrorTTL overrides how long storage errors stay in the slot.
func WithErrorTTL(ttl time.Duration) Option {
	return func(o *options) { o.errorTTL = ttl }
}

// errorSlot holds the most recent storage error for a fixed display
// window. Reads past the window see no error.
type errorSlot struct {
	mu         sync.Mutex
	err        error
	recordedAt time.Time
	ttl        time.Duration
	now        clockFunc
}

func newErrorSlot(ttl time.Duration, now clockFunc) *errorSlot {
	return &errorSlot{ttl: ttl, now: now}
}

func (s *errorSlot) set(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	s.recordedAt = s.now()
}

func (s *errorSlot) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	if s.now().Sub(s.recordedAt) > s.ttl {
		s.err = nil
		return nil
	}
	return s.err
}

// publish forwards a change event and logs failures without
// propagating them; a lost notification must not fail the mutation.
func publish(ctx context.Context, pub Publisher, entity, op, id string) {
	if pub == nil {
		return
	}
	if err := pub.PublishChange(ctx, entity, op, id); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"entity", entity, "op", op, "id", id, "error", err)
	}
}
