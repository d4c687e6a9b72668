package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

func TestKey(t *testing.T) {
	k := Key("https://example.com/a")
	if !strings.HasPrefix(k, KeyPrefix) {
		t.Errorf("key %q missing prefix", k)
	}
	if len(k) != len(KeyPrefix)+64 {
		t.Errorf("unexpected key length %d", len(k))
	}
	if Key("https://example.com/a") != k {
		t.Error("key not stable")
	}
	if Key("https://example.com/b") == k {
		t.Error("distinct subjects share a key")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}

	_ = c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewDiskCache(t.TempDir(), time.Hour, clock)

	key := Key("subject")
	if err := c.Set(ctx, key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, key)
	if err != nil || string(got) != "payload" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	clock.Advance(time.Hour)
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Errorf("expected miss at expiry, got %v", err)
	}
	if _, statErr := os.Stat(c.path(key)); !os.IsNotExist(statErr) {
		t.Error("expected expired entry to be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c := NewDiskCache(t.TempDir(), time.Hour, clockwork.NewFakeClock())

	if err := os.WriteFile(c.path("bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "bad"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected miss for corrupt entry, got %v", err)
	}
	if err := c.Delete(ctx, "never-written"); err != nil {
		t.Errorf("deleting a missing entry should succeed: %v", err)
	}
}

func TestLayeredCache_Promotes(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryCache(time.Minute, time.Minute)
	durable := NewDiskCache(t.TempDir(), time.Hour, clockwork.NewFakeClock())
	c := NewLayeredCache(memory, durable, time.Minute)

	if err := durable.Set(ctx, "k", []byte("from-disk"), 0); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "from-disk" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if _, err := memory.Get(ctx, "k"); err != nil {
		t.Error("expected durable hit to be promoted to memory")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCache(client, time.Hour)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewRedisCacheFromURL_Invalid(t *testing.T) {
	if _, err := NewRedisCacheFromURL("mysql://nope", time.Hour); err == nil {
		t.Error("expected error for non-redis URL")
	}
}
