package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseStore checks the Store contract against a clock the test controls.
func exerciseStore(t *testing.T, store Store, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Expected miss for unknown key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Expected overwrite to succeed, got: %v", err)
	}
	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("Expected v2, got %q ok=%v err=%v", got, ok, err)
	}

	clock.Advance(time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("Expected key to expire after its TTL")
	}

	if err := store.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	clock.Advance(24 * time.Hour)
	if _, ok, _ := store.Get(ctx, "forever"); !ok {
		t.Error("Expected key without TTL to persist")
	}

	if err := store.Delete(ctx, "forever"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, "forever"); ok {
		t.Error("Expected deleted key to be gone")
	}
}

func TestMemoryStore(t *testing.T) {
	clock := newClock()
	exerciseStore(t, NewMemoryStoreWithClock(clock.Now), clock)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "kona.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer store.Close()

	clock := newClock()
	store.now = clock.Now
	exerciseStore(t, store, clock)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kona.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, DefaultKey, []byte(`{"site":{}}`), time.Hour); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Expected reopening with applied migrations to succeed, got: %v", err)
	}
	defer second.Close()

	if got, ok, err := second.Get(ctx, DefaultKey); err != nil || !ok || string(got) != `{"site":{}}` {
		t.Errorf("Expected stored snapshot after reopen, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr)
	if err != nil {
		t.Skipf("Redis unavailable: %v", err)
	}
	defer store.Close()

	key := "kona:test:" + time.Now().Format(time.RFC3339Nano)
	defer store.Delete(ctx, key)

	if err := store.Set(ctx, key, []byte("snapshot"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok || string(got) != "snapshot" {
		t.Errorf("Expected snapshot, got %q ok=%v err=%v", got, ok, err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Get(ctx, key); ok {
		t.Error("Expected key to be deleted")
	}
}
