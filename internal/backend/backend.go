// Package backend selects and constructs the persistence backend the
// stores write through.
package backend

import (
	"fmt"

	"bilancio/internal/config"
	"bilancio/internal/kvstore"
)

// Type identifies a persistence backend.
type Type string

const (
	MemoryBackend Type = "memory"
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the constructed backend with its cleanup function.
// Cleanup may be nil when there is nothing to release.
type Result struct {
	Backend kvstore.Backend
	Cleanup CleanupFunc
}

// Create builds the backend named by the application config.
func Create(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		db, err := kvstore.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		return &Result{Backend: db, Cleanup: db.Close}, nil

	case FileBackend:
		dir, err := kvstore.NewDir(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		return &Result{Backend: dir}, nil

	default:
		return &Result{Backend: kvstore.NewMemory()}, nil
	}
}
