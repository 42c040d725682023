// Package worker consumes change messages and appends them to a
// JSON-lines audit log, giving the tracker a durable trail of every
// mutation independent of the primary data backend.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
)

// ChangeSource is the consuming side of the change-event pipeline.
// *amqp.Client implements it.
type ChangeSource interface {
	ConsumeWithRetry(ctx context.Context, handler func(*amqp.ChangeMessage) error) error
}

// AuditEntry is one line in the audit log.
type AuditEntry struct {
	Entity     string    `json:"entity"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	RecordedAt time.Time `json:"recordedAt"`
}

// AuditWorker appends consumed change messages to an append-only file,
// one JSON document per line.
type AuditWorker struct {
	source   ChangeSource
	path     string
	interval time.Duration

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewAuditWorker creates a worker writing to path. interval controls
// how often progress is logged; zero disables the progress loop.
func NewAuditWorker(source ChangeSource, path string, interval time.Duration) (*AuditWorker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditWorker{
		source:   source,
		path:     path,
		interval: interval,
		file:     f,
	}, nil
}

// Run consumes until ctx is cancelled. Cancellation is a clean stop,
// not an error.
func (w *AuditWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.source.ConsumeWithRetry(ctx, w.Handle)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("consume changes: %w", err)
		}
		return nil
	})

	if w.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					slog.InfoContext(ctx, "Audit worker progress",
						"entries_written", atomic.LoadInt64(&w.written),
						"path", w.path)
				}
			}
		})
	}

	return g.Wait()
}

// Handle appends one change message to the audit log.
func (w *AuditWorker) Handle(msg *amqp.ChangeMessage) error {
	entry := AuditEntry{
		Entity:     msg.Entity,
		Op:         msg.Op,
		ID:         msg.ID,
		OccurredAt: msg.Timestamp,
		RecordedAt: time.Now(),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	atomic.AddInt64(&w.written, 1)
	return nil
}

// Written reports how many entries were appended so far.
func (w *AuditWorker) Written() int64 {
	return atomic.LoadInt64(&w.written)
}

func (w *AuditWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}
