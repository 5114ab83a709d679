package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/cache"
	"github.com/ppiankov/trackmatch/internal/model"
)

// CachedSearcher serves repeated queries from a cache. Failed searches are
// never cached.
type CachedSearcher struct {
	next   Searcher
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps a searcher with a cache
func NewCached(next Searcher, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{next: next, cache: c, ttl: ttl, logger: logger}
}

// Name returns the wrapped provider name
func (s *CachedSearcher) Name() string {
	return s.next.Name()
}

// Search returns cached candidates when available
func (s *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error) {
	res, _, err := s.SearchCached(ctx, query, limit)
	return res, err
}

// SearchCached is Search that also reports whether the result was a cache hit
func (s *CachedSearcher) SearchCached(ctx context.Context, query string, limit int) ([]model.SearchCandidate, bool, error) {
	key := cache.Key(s.next.Name(), query, strconv.Itoa(limit))

	if data, ok := s.cache.Get(key); ok {
		var cached []model.SearchCandidate
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true, nil
		}
		s.logger.Debug("dropping unreadable cache entry", zap.String("query", query))
		_ = s.cache.Delete(key)
	}

	res, err := s.next.Search(ctx, query, limit)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(key, data, s.ttl); err != nil {
			s.logger.Warn("failed to cache search result", zap.String("query", query), zap.Error(err))
		}
	}
	return res, false, nil
}
