package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestLoadMissingKeyYieldsEmpty(t *testing.T) {
	items, err := Load[record](context.Background(), NewMemory(), "absent")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("Load = %v, want empty non-nil slice", items)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()

	original := []record{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}
	if err := Save(ctx, backend, "records", original); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load[record](ctx, backend, "records")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != original[0] || loaded[1] != original[1] {
		t.Fatalf("Load = %v, want %v", loaded, original)
	}
}

func TestLoadCorruptValueYieldsReadError(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	if err := backend.Put(ctx, "records", []byte("{not json")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	items, err := Load[record](ctx, backend, "records")
	if err == nil {
		t.Fatal("expected *ReadError for corrupt value")
	}
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error type = %T, want *ReadError", err)
	}
	if readErr.Key != "records" {
		t.Errorf("ReadError.Key = %q, want records", readErr.Key)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("corrupt load should still yield empty slice, got %v", items)
	}
}

type failingBackend struct {
	getErr error
	putErr error
}

func (f *failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.getErr
}
func (f *failingBackend) Put(context.Context, string, []byte) error { return f.putErr }
func (f *failingBackend) Close() error                              { return nil }

func TestSaveFailureYieldsWriteError(t *testing.T) {
	backend := &failingBackend{putErr: errors.New("disk full")}

	err := Save(context.Background(), backend, "records", []record{{ID: "a"}})
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error type = %T, want *WriteError", err)
	}
	if writeErr.Key != "records" {
		t.Errorf("WriteError.Key = %q, want records", writeErr.Key)
	}
}

func TestDirBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir returned error: %v", err)
	}

	if _, found, err := dir.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found=%v err=%v, want absent", found, err)
	}

	if err := dir.Put(ctx, "records", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	raw, found, err := dir.Get(ctx, "records")
	if err != nil || !found {
		t.Fatalf("Get = found=%v err=%v, want value", found, err)
	}
	if string(raw) != `[{"id":"a"}]` {
		t.Fatalf("Get = %s", raw)
	}
}

func TestDirBackendSanitizesKeys(t *testing.T) {
	base := t.TempDir()
	dir, err := NewDir(base)
	if err != nil {
		t.Fatalf("NewDir returned error: %v", err)
	}

	if err := dir.Put(context.Background(), "../escape", []byte("x")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, ".._escape.json")); err != nil {
		t.Fatalf("sanitized file not found: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape.json")); err == nil {
		t.Fatal("key escaped the base directory")
	}
}
