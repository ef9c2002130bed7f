package tokencache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileStore(path)
	ctx := context.Background()

	// 1. Read non-existent cache
	if _, ok := store.Get(ctx, "tdx"); ok {
		t.Errorf("expected miss for missing file")
	}

	// 2. Write cache
	expires := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if err := store.Put(ctx, "tdx", Entry{AccessToken: "abc", ExpiresAt: expires}); err != nil {
		t.Fatalf("unexpected error writing cache: %v", err)
	}
	if err := store.Put(ctx, "other", Entry{AccessToken: "xyz", ExpiresAt: expires}); err != nil {
		t.Fatalf("unexpected error writing second key: %v", err)
	}

	// 3. Read both keys back
	e, ok := store.Get(ctx, "tdx")
	if !ok || e.AccessToken != "abc" || !e.ExpiresAt.Equal(expires) {
		t.Errorf("unexpected entry: %+v (ok=%v)", e, ok)
	}
	if e, ok := store.Get(ctx, "other"); !ok || e.AccessToken != "xyz" {
		t.Errorf("expected second key to survive, got %+v", e)
	}
}

func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"tdx": {"access_token": "ab`), 0o600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	store := NewFileStore(path)
	if _, ok := store.Get(context.Background(), "tdx"); ok {
		t.Fatalf("expected corrupt file to read as a miss")
	}

	// A subsequent write heals the file.
	if err := store.Put(context.Background(), "tdx", Entry{AccessToken: "new"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e, ok := store.Get(context.Background(), "tdx"); !ok || e.AccessToken != "new" {
		t.Errorf("expected healed entry, got %+v", e)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok := store.Get(ctx, "tdx"); ok {
		t.Fatal("expected empty store")
	}
	store.Put(ctx, "tdx", Entry{AccessToken: "a"})
	store.Put(ctx, "tdx", Entry{AccessToken: "b"})

	if e, _ := store.Get(ctx, "tdx"); e.AccessToken != "b" {
		t.Errorf("expected last write to win, got %s", e.AccessToken)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	defer store.Close()

	if _, ok := store.Get(ctx, "tdx"); ok {
		t.Fatal("expected miss on empty database")
	}

	expires := time.Unix(1772438400, 0)
	if err := store.Put(ctx, "tdx", Entry{AccessToken: "first", ExpiresAt: expires}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "tdx", Entry{AccessToken: "second", ExpiresAt: expires.Add(time.Hour)}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	e, ok := store.Get(ctx, "tdx")
	if !ok {
		t.Fatal("expected stored entry")
	}
	if e.AccessToken != "second" || !e.ExpiresAt.Equal(expires.Add(time.Hour)) {
		t.Errorf("unexpected entry after upsert: %+v", e)
	}
}
