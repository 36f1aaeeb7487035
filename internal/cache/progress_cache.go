package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/config"
	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "progress:user"

// ProgressCache holds computed progress snapshots per user. Entries are
// invalidated explicitly whenever one of the user's doses is resolved.
type ProgressCache interface {
	Get(ctx context.Context, userID string) (*domain.ProgressSnapshot, bool, error)
	Set(ctx context.Context, snap domain.ProgressSnapshot) error
	Invalidate(ctx context.Context, userID string) error
	InvalidateAll(ctx context.Context) error
}

type redisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopProgressCache struct{}

func NewProgressCache(cfg config.CacheConfig) (ProgressCache, error) {
	if !cfg.Enabled {
		return &noopProgressCache{}, nil
	}

	client, err := dialRedis(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisProgressCache(client, progressTTL(cfg)), nil
}

// NewRedisProgressCache wraps an existing client.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisProgressCache{client: client, ttl: ttl}
}

func NewNoopProgressCache() ProgressCache {
	return &noopProgressCache{}
}

func (c *redisProgressCache) Get(ctx context.Context, userID string) (*domain.ProgressSnapshot, bool, error) {
	payload, err := c.client.Get(ctx, progressKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snap domain.ProgressSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, fmt.Errorf("decode progress cache: %w", err)
	}

	return &snap, true, nil
}

func (c *redisProgressCache) Set(ctx context.Context, snap domain.ProgressSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode progress cache: %w", err)
	}

	if err := c.client.Set(ctx, progressKey(snap.UserID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisProgressCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, progressKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisProgressCache) InvalidateAll(ctx context.Context) error {
	return unlinkPrefix(ctx, c.client, progressKeyPrefix+":")
}

func (n *noopProgressCache) Get(ctx context.Context, userID string) (*domain.ProgressSnapshot, bool, error) {
	return nil, false, nil
}

func (n *noopProgressCache) Set(ctx context.Context, snap domain.ProgressSnapshot) error {
	return nil
}

func (n *noopProgressCache) Invalidate(ctx context.Context, userID string) error {
	return nil
}

func (n *noopProgressCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func progressKey(userID string) string {
	return fmt.Sprintf("%s:%s", progressKeyPrefix, strings.ToLower(strings.TrimSpace(userID)))
}
