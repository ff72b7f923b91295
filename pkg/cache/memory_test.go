package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "prediction:BTC:7d", []byte(`{"ok":true}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := mc.Get(ctx, "prediction:BTC:7d")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"ok":true}`)) {
		t.Fatalf("value = %q", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	_, err := mc.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired key err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", []byte("1"), time.Minute)
	_ = mc.Set(ctx, "b", []byte("2"), time.Minute)

	if err := mc.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := mc.Exists(ctx, "a", "b")
	if err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v", ok, err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "prediction:BTC:7d", []byte("1"), time.Minute)
	_ = mc.Set(ctx, "prediction:BTC:30d", []byte("2"), time.Minute)
	_ = mc.Set(ctx, "risk_score:BTC:7d", []byte("3"), time.Minute)

	if err := mc.DeleteByPattern(ctx, "prediction:BTC:*"); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}
	if ok, _ := mc.Exists(ctx, "prediction:BTC:7d", "prediction:BTC:30d"); ok {
		t.Fatal("pattern keys survived")
	}
	if ok, _ := mc.Exists(ctx, "risk_score:BTC:7d"); !ok {
		t.Fatal("unrelated key deleted")
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "old", []byte("1"), time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "mid", []byte("2"), time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "new", []byte("3"), time.Minute)

	if ok, _ := mc.Exists(ctx, "old"); ok {
		t.Fatal("least recently used key not evicted")
	}
	if ok, _ := mc.Exists(ctx, "new"); !ok {
		t.Fatal("fresh key missing")
	}
}

func TestGenerateKey(t *testing.T) {
	if got := GenerateKey("prediction", "BTC", "7d"); got != "prediction:BTC:7d" {
		t.Fatalf("key = %q", got)
	}
	if got := GenerateKeyWithParams("ensemble", "ETH", "30d", "majority_voting"); got != "ensemble:ETH:30d:majority_voting" {
		t.Fatalf("key = %q", got)
	}
	if got := GenerateKeyWithParams("base"); got != "base" {
		t.Fatalf("key = %q", got)
	}
}

func TestBuildPattern(t *testing.T) {
	if got := BuildPattern("prediction", "BTC"); got != "prediction:BTC:*" {
		t.Fatalf("pattern = %q", got)
	}
}
