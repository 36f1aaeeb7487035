package cache

import (
	"context"
	"testing"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/domain"
)

func TestProgressKeyNormalizesUserID(t *testing.T) {
	a := progressKey("0B7C3F4E-1111-4A4A-9C9C-ABCDEFABCDEF")
	b := progressKey(" 0b7c3f4e-1111-4a4a-9c9c-abcdefabcdef ")
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if want := "progress:user:0b7c3f4e-1111-4a4a-9c9c-abcdefabcdef"; a != want {
		t.Fatalf("key=%q, want %q", a, want)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewProgressCache(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewProgressCache: %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, domain.ProgressSnapshot{UserID: "u1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "u1"); ok || err != nil {
		t.Fatalf("Get on noop cache = (ok=%v, err=%v), want miss", ok, err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	if err != nil {
		t.Fatalf("redisOptions: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 {
		t.Fatalf("opts=%+v", opts)
	}

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6379/3"})
	if err != nil {
		t.Fatalf("redisOptions url: %v", err)
	}
	if opts.Addr != "redis.internal:6379" || opts.DB != 3 || opts.Password != "secret" {
		t.Fatalf("opts from url=%+v", opts)
	}

	if _, err := redisOptions(config.CacheConfig{RedisURL: "http://nope"}); err == nil {
		t.Fatalf("expected error for non-redis url")
	}
}

func TestProgressTTL(t *testing.T) {
	if got := progressTTL(config.CacheConfig{}); got != defaultCacheTTL {
		t.Fatalf("default ttl=%v, want %v", got, defaultCacheTTL)
	}
	if got := progressTTL(config.CacheConfig{ProgressTTLSeconds: 30}); got != 30*time.Second {
		t.Fatalf("ttl=%v, want 30s", got)
	}
}
