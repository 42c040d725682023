// Package kvstore persists the application's state as JSON arrays
// under fixed keys. Backends implement the raw byte-level port; Load
// and Save handle the (de)serialization and the soft-failure contract:
// missing or corrupt data reads as an empty collection, and a failed
// write reports an error without touching in-memory state.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Backend is the raw key/value persistence port.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	Close() error
}

// ReadError wraps a failed or corrupt read. Callers treat it as a
// non-fatal warning and continue with empty state.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a rejected write. In-memory state stays
// authoritative for the session when this happens.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Load decodes the JSON array stored under key. A missing key yields
// an empty slice and no error. A backend failure or undecodable value
// also yields an empty slice, alongside a *ReadError the caller can
// surface as a warning.
func Load[T any](ctx context.Context, b Backend, key string) ([]T, error) {
	raw, found, err := b.Get(ctx, key)
	if err != nil {
		return []T{}, &ReadError{Key: key, Err: err}
	}
	if !found || len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, &ReadError{Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save serializes items as a JSON array under key. Failures come back
// as *WriteError.
func Save[T any](ctx context.Context, b Backend, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	if err := b.Put(ctx, key, raw); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}
