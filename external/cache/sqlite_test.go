package cache

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store
}

func TestSQLiteStore_GetMissingKey(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "cache.db"))
	defer func() {
		_ = store.Shutdown()
	}()

	got, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || got != "" {
		t.Fatalf("expected miss, got %q", got)
	}
}

func TestSQLiteStore_SetOverwritesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store := openTestStore(t, path)
	if err := store.Set(ctx, "abc_v1", "first"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := store.Set(ctx, "abc_v1", "- 日本語の要約"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}
	if err := store.Shutdown(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened := openTestStore(t, path)
	defer func() {
		_ = reopened.Shutdown()
	}()
	got, found, err := reopened.Get(ctx, "abc_v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || got != "- 日本語の要約" {
		t.Fatalf("unexpected value: %q, found=%v", got, found)
	}
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "cache.db"))
	defer func() {
		_ = store.Shutdown()
	}()
	ctx := context.Background()

	if err := store.Set(ctx, "abc_v1", "plain"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := store.Set(ctx, "timestamp-abc_v1", "with timestamps"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	plain, _, _ := store.Get(ctx, "abc_v1")
	stamped, _, _ := store.Get(ctx, "timestamp-abc_v1")
	if plain != "plain" || stamped != "with timestamps" {
		t.Fatalf("unexpected values: %q, %q", plain, stamped)
	}
}
