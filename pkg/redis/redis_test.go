package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/rebalancer/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	cache := NewCache(client, "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestCache_Nil(t *testing.T) {
	var cache *Cache

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil || found {
		t.Errorf("nil cache Get() = %v, %v; want miss", found, err)
	}
}

func TestSnapshotKey(t *testing.T) {
	if got := SnapshotKey("2026-10-14", ""); got != "snapshot:2026-10-14" {
		t.Errorf("got %q, want %q", got, "snapshot:2026-10-14")
	}
	if got := SnapshotKey("2026-10-14", "ab12cd34"); got != "snapshot:2026-10-14:ab12cd34" {
		t.Errorf("got %q, want %q", got, "snapshot:2026-10-14:ab12cd34")
	}
}
