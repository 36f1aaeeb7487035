package service

import (
	"context"
	"fmt"

	"github.com/leplonghi/horamed-sub006/internal/cache"
	"github.com/leplonghi/horamed-sub006/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProgressComputer derives a user's progress from dose history.
type ProgressComputer interface {
	Compute(ctx context.Context, userID string) (domain.ProgressSnapshot, error)
}

type ProgressService struct {
	engine ProgressComputer
	cache  cache.ProgressCache
}

func NewProgressService(engine ProgressComputer, cacheImpl cache.ProgressCache) *ProgressService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopProgressCache()
	}
	return &ProgressService{engine: engine, cache: cacheImpl}
}

// Get returns the cached snapshot or recomputes it. A failed computation
// is returned as an error and never written to the cache, so whatever the
// caller last displayed stays valid.
func (s *ProgressService) Get(ctx context.Context, userID string) (domain.ProgressSnapshot, error) {
	if snap, ok, err := s.cache.Get(ctx, userID); err == nil && ok {
		return *snap, nil
	} else if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("progress: cache get failed")
	}

	snap, err := s.engine.Compute(ctx, userID)
	if err != nil {
		return domain.ProgressSnapshot{}, err
	}

	if err := s.cache.Set(ctx, snap); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("progress: cache set failed")
	}

	return snap, nil
}

// Invalidate drops the user's cached snapshot.
func (s *ProgressService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("progress: cache invalidate failed")
	}
}

// Flush drops every cached snapshot. The server calls it at startup since
// snapshots computed under different calendar settings would be stale.
func (s *ProgressService) Flush(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("flush progress cache: %w", err)
	}
	return nil
}
