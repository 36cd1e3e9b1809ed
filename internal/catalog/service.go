package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/store/cache"
	"github.com/mbergo/guardrails/pkg/api"
)

// Service serves per-provider catalogs with a read-through cache and the
// aggregate snapshot the UI boots from.
type Service interface {
	// Get returns p's catalog, from cache when fresh.
	Get(ctx context.Context, p api.Provider) api.ModelCatalog

	// Snapshot fetches every provider's catalog concurrently, keyed by the
	// provider's wire name. One provider failing never blocks or empties
	// another's entry.
	Snapshot(ctx context.Context) map[string]api.ModelCatalog

	// Refresh fetches p's catalog from upstream, bypassing the cache, and
	// stores the result when the fetch succeeded.
	Refresh(ctx context.Context, p api.Provider) api.ModelCatalog

	// Invalidate drops p's cached catalog.
	Invalidate(ctx context.Context, p api.Provider) error
}

type service struct {
	logger  *zap.Logger
	fetcher *Fetcher
	cache   cache.CacheService
	ttl     time.Duration
}

func NewService(logger *zap.Logger, fetcher *Fetcher, cacheSvc cache.CacheService, ttl time.Duration) Service {
	return &service{
		logger:  logger,
		fetcher: fetcher,
		cache:   cacheSvc,
		ttl:     ttl,
	}
}

func (s *service) Get(ctx context.Context, p api.Provider) api.ModelCatalog {
	var cached api.ModelCatalog
	err := s.cache.Get(ctx, cacheKey(p), &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed",
			zap.String("provider", string(p)),
			zap.Error(err))
	}
	return s.Refresh(ctx, p)
}

func (s *service) Snapshot(ctx context.Context) map[string]api.ModelCatalog {
	providers := api.Providers()
	results := make([]api.ModelCatalog, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p api.Provider) {
			defer wg.Done()
			results[i] = s.Get(ctx, p)
		}(i, p)
	}
	wg.Wait()

	snapshot := make(map[string]api.ModelCatalog, len(providers))
	for i, p := range providers {
		snapshot[string(p)] = results[i]
	}
	return snapshot
}

func (s *service) Refresh(ctx context.Context, p api.Provider) api.ModelCatalog {
	cat := s.fetcher.Fetch(ctx, p)

	// Failed fetches are never cached, so a provider outage clears on the
	// next request instead of sticking for a full TTL.
	if cat.Error == "" {
		if err := s.cache.Set(ctx, cacheKey(p), cat, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed",
				zap.String("provider", string(p)),
				zap.Error(err))
		}
	}
	return cat
}

func (s *service) Invalidate(ctx context.Context, p api.Provider) error {
	return s.cache.Delete(ctx, cacheKey(p))
}

func cacheKey(p api.Provider) string {
	return "catalog:" + string(p)
}
