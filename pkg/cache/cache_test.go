package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Errorf("Get() = %q, want payload", data)
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("missing key must be a miss, not an error")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("non-positive TTL should mean no expiration")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should be a miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key should not error, got %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Error("null cache must never hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	a := Hash([]byte("data"))
	b := Hash([]byte("data"))
	if a != b {
		t.Error("identical input should hash identically")
	}
	if a == Hash([]byte("other")) {
		t.Error("different input should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(a))
	}
}

func TestLayoutKeySensitivity(t *testing.T) {
	keyer := NewDefaultKeyer()
	base := LayoutKeyOpts{Source: "S", Destination: "T", MaxHops: 3}

	baseKey := keyer.LayoutKey("hash1", base)
	if baseKey != keyer.LayoutKey("hash1", base) {
		t.Error("identical options should produce identical keys")
	}

	variants := map[string]LayoutKeyOpts{
		"source":     {Source: "X", Destination: "T", MaxHops: 3},
		"hops":       {Source: "S", Destination: "T", MaxHops: 2},
		"categories": {Source: "S", Destination: "T", MaxHops: 3, Categories: []string{"open"}},
		"min weight": {Source: "S", Destination: "T", MaxHops: 3, MinWeight: 0.5},
	}
	for name, opts := range variants {
		if keyer.LayoutKey("hash1", opts) == baseKey {
			t.Errorf("changing %s should change the key", name)
		}
	}
	if keyer.LayoutKey("hash2", base) == baseKey {
		t.Error("changing the dataset hash should change the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant1:")

	opts := LayoutKeyOpts{Source: "S", Destination: "T"}
	got := scoped.LayoutKey("h", opts)
	want := "tenant1:" + inner.LayoutKey("h", opts)
	if got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
	if scoped.UniverseKey("d") != "tenant1:"+inner.UniverseKey("d") {
		t.Error("UniverseKey should carry the prefix")
	}
}
