package catalog

import (
	"context"
	"errors"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/worker"
)

// LimitedSearcher throttles searches per catalog host and backs off when the
// catalog answers with a rate limit
type LimitedSearcher struct {
	next     Searcher
	limiter  *worker.Limiter
	endpoint string
}

// NewLimited wraps a searcher with a rate limiter keyed on endpoint
func NewLimited(next Searcher, limiter *worker.Limiter, endpoint string) *LimitedSearcher {
	return &LimitedSearcher{next: next, limiter: limiter, endpoint: endpoint}
}

// Name returns the wrapped provider name
func (s *LimitedSearcher) Name() string {
	return s.next.Name()
}

// Search waits for rate limit clearance, then searches
func (s *LimitedSearcher) Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error) {
	if err := s.limiter.Wait(ctx, s.endpoint); err != nil {
		return nil, err
	}

	res, err := s.next.Search(ctx, query, limit)

	var rl *RateLimitError
	if errors.As(err, &rl) {
		s.limiter.Cooldown(s.endpoint, rl.RetryAfter)
	}
	return res, err
}
