package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
		"sqlite": sqlite,
	}
}

func TestStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "vitalscope/main_score", []byte{0x01, 0x02}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := s.Put(ctx, "vitalscope/main_score", []byte{0x03}); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}

			got, err := s.Get(ctx, "vitalscope/main_score")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "\x03" {
				t.Errorf("Get = %x, want 03", got)
			}

			if err := s.Delete(ctx, "vitalscope/main_score"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "vitalscope/main_score"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, "vitalscope/main_score"); err != nil {
				t.Errorf("Delete of missing key: %v", err)
			}
		})
	}
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		for _, key := range []string{"", "/abs", "a/../b", "a//b"} {
			if err := s.Put(ctx, key, []byte("x")); err == nil {
				t.Errorf("%s: Put(%q) succeeded, want error", name, key)
			}
		}
	}
}

func TestLocalStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)

	if err := s.Put(context.Background(), "vitalscope/narrative", []byte("n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	expectedPath := filepath.Join(dir, "vitalscope", "narrative.bin")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("abc")
	_ = s.Put(context.Background(), "k", buf)
	buf[0] = 'z'

	got, _ := s.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed with caller's buffer: %q", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	s.Close()

	if _, err := Open(ctx, Config{Backend: "floppy"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := Open(ctx, Config{Backend: BackendS3}); err == nil {
		t.Error("expected error for s3 without bucket")
	}
}
