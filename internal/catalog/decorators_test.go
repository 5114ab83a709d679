package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/trackmatch/internal/cache"
	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/worker"
)

// countingSearcher counts calls and optionally fails
type countingSearcher struct {
	calls int
	err   error
}

func (s *countingSearcher) Name() string { return "counting" }

func (s *countingSearcher) Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []model.SearchCandidate{{URI: "u:" + query, Name: query}}, nil
}

func TestCachedSearcher_HitsCache(t *testing.T) {
	next := &countingSearcher{}
	s := NewCached(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)
	ctx := context.Background()

	res, cached, err := s.SearchCached(ctx, "hello", 10)
	if err != nil || cached || len(res) != 1 {
		t.Fatalf("unexpected first search: %v %v %v", res, cached, err)
	}

	res, cached, err = s.SearchCached(ctx, "hello", 10)
	if err != nil || !cached || len(res) != 1 || res[0].URI != "u:hello" {
		t.Fatalf("unexpected second search: %v %v %v", res, cached, err)
	}
	if next.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.calls)
	}

	// A different limit is a different query
	if _, cached, _ := s.SearchCached(ctx, "hello", 5); cached {
		t.Error("expected miss for different limit")
	}
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	next := &countingSearcher{err: errors.New("boom")}
	s := NewCached(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.Search(context.Background(), "hello", 10); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Errorf("expected failures to reach upstream every time, got %d calls", next.calls)
	}
}

func TestLimitedSearcher_CooldownOnRateLimit(t *testing.T) {
	next := &countingSearcher{err: &RateLimitError{RetryAfter: time.Minute}}
	limiter := worker.NewLimiter(100, 10)
	endpoint := "https://api.spotify.com/v1"
	s := NewLimited(next, limiter, endpoint)

	if _, err := s.Search(context.Background(), "hello", 10); err == nil {
		t.Fatal("expected rate limit error")
	}
	if limiter.Allow(endpoint) {
		t.Error("expected host to cool down after a rate limit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Search(ctx, "hello", 10); err == nil {
		t.Error("expected cancelled wait during cooldown")
	}
	if next.calls != 1 {
		t.Errorf("expected no upstream call during cooldown, got %d", next.calls)
	}
}

func TestLimitedSearcher_PassesThrough(t *testing.T) {
	next := &countingSearcher{}
	s := NewLimited(next, worker.NewLimiter(100, 10), "http://localhost")

	res, err := s.Search(context.Background(), "hello", 10)
	if err != nil || len(res) != 1 {
		t.Fatalf("unexpected result %v %v", res, err)
	}
	if s.Name() != "counting" {
		t.Errorf("expected wrapped name, got %s", s.Name())
	}
}
