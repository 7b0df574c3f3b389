package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}

	if err := s.Set(ctx, "images", `{"a":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "images")
	if err != nil || !ok || v != `{"a":1}` {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := s.Set(ctx, "images", `{"b":2}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, _, _ = s.Get(ctx, "images")
	if v != `{"b":2}` {
		t.Errorf("after overwrite Get = %q", v)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	testStoreContract(t, s)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "images.json" {
		t.Errorf("expected only images.json, got %v", entries)
	}
}

func TestFileStore_SanitizesKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if got := filepath.Base(s.path("../../etc/passwd")); got != ".._.._etc_passwd.json" {
		t.Errorf("path base = %q", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	testStoreContract(t, s)
}

func TestSQLiteStore_ReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v, ok, err := s.Get(ctx, "k"); err != nil || !ok || v != "v" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), "  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("IMAGEGEN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("IMAGEGEN_TEST_POSTGRES_DSN not set")
	}
	s, err := OpenPostgres(context.Background(), dsn, PoolConfig{MaxOpenConns: 2, MaxIdleConns: 2, ConnMaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	testStoreContract(t, s)
}
