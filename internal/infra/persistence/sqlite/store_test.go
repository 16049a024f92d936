package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return s, path
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	if s.Driver() != "sqlite" || s.Path() != path {
		t.Fatalf("unexpected driver/path %s %s", s.Driver(), s.Path())
	}
	if _, ok, err := s.Get(ctx, "grocery-storage"); err != nil || ok {
		t.Fatalf("expected miss: %v %v", ok, err)
	}
	if err := s.Set(ctx, "grocery-storage", []byte(`{"version":1,"state":{"items":[]}}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "grocery-storage", []byte(`{"version":1,"state":{"items":[{"id":"a"}]}}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, ok, err := reopened.Get(ctx, "grocery-storage")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if string(got) != `{"version":1,"state":{"items":[{"id":"a"}]}}` {
		t.Fatalf("unexpected payload %s", got)
	}
	var rows int
	if err := reopened.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil || rows != 1 {
		t.Fatalf("expected one row, got %d (%v)", rows, err)
	}
}

func TestSQLiteStoreEmptyPayload(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Set(ctx, "k", nil); err != nil {
		t.Fatalf("set nil: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("unexpected %q %v %v", got, ok, err)
	}
}

func TestSQLiteStoreClosedErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	_ = s.Close()
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Fatalf("expected error on closed db")
	}
	if err := s.Set(ctx, "k", []byte("x")); err == nil {
		t.Fatalf("expected error on closed db")
	}
}
