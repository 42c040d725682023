package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Dir is a file-backed backend storing one JSON document per key
// under a base directory. Writes go through a temp file and rename so
// a crash mid-write cannot corrupt an existing record.
type Dir struct {
	mu   sync.Mutex
	base string
}

func NewDir(base string) (*Dir, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Dir{base: base}, nil
}

func (d *Dir) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := os.ReadFile(d.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read record file: %w", err)
	}
	return raw, true, nil
}

func (d *Dir) Put(_ context.Context, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0644); err != nil {
		return fmt.Errorf("write record file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace record file: %w", err)
	}
	return nil
}

func (d *Dir) Close() error { return nil }

// path maps a key to a file name, stripping separators so a key can
// never escape the base directory.
func (d *Dir) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(d.base, safe+".json")
}
