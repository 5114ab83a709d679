package worker

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Searcher runs one catalog search
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error)
}

// cacheReporter is implemented by searchers that can tell whether a result
// was served from cache
type cacheReporter interface {
	SearchCached(ctx context.Context, query string, limit int) ([]model.SearchCandidate, bool, error)
}

// QueryJob runs a single catalog query
type QueryJob struct {
	Index    int
	Query    string
	Limit    int
	Searcher Searcher
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &QueryResult{Index: j.Index, Query: j.Query}

	if cr, ok := j.Searcher.(cacheReporter); ok {
		res.Candidates, res.Cached, res.Error = cr.SearchCached(ctx, j.Query, j.Limit)
	} else {
		res.Candidates, res.Error = j.Searcher.Search(ctx, j.Query, j.Limit)
	}

	res.Duration = time.Since(start)
	return res
}

// QueryResult is the outcome of one QueryJob
type QueryResult struct {
	Index      int
	Query      string
	Candidates []model.SearchCandidate
	Cached     bool
	Duration   time.Duration
	Error      error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// Dispatcher issues catalog queries concurrently and merges their results
type Dispatcher struct {
	searcher Searcher
	workers  int
	limit    int
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher running up to workers queries at once
func NewDispatcher(searcher Searcher, workers, limit int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		searcher: searcher,
		workers:  workers,
		limit:    limit,
		logger:   logger,
	}
}

// Dispatch runs every query and returns the concatenated candidates in query
// order, plus one stat per query. A failed query contributes no candidates.
func (d *Dispatcher) Dispatch(ctx context.Context, queries []string) ([]model.SearchCandidate, []model.QueryStat) {
	if len(queries) == 0 {
		return nil, nil
	}

	jobs := make([]Job, len(queries))
	for i, q := range queries {
		jobs[i] = &QueryJob{Index: i, Query: q, Limit: d.limit, Searcher: d.searcher}
	}

	raw := NewPoolContext(ctx, d.workers).Run(jobs)

	results := make([]*QueryResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.(*QueryResult))
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var candidates []model.SearchCandidate
	stats := make([]model.QueryStat, 0, len(results))
	for _, r := range results {
		stat := model.QueryStat{
			Query:      r.Query,
			Results:    len(r.Candidates),
			Cached:     r.Cached,
			DurationMs: r.Duration.Milliseconds(),
		}

		if r.Error != nil {
			d.logger.Warn("catalog query failed, treating as empty",
				zap.String("query", r.Query),
				zap.Error(r.Error),
			)
			stat.Results = 0
			stat.Error = r.Error.Error()
			stats = append(stats, stat)
			continue
		}

		d.logger.Debug("catalog query done",
			zap.String("query", r.Query),
			zap.Int("results", len(r.Candidates)),
			zap.Bool("cached", r.Cached),
			zap.Duration("duration", r.Duration),
		)
		candidates = append(candidates, r.Candidates...)
		stats = append(stats, stat)
	}

	return candidates, stats
}
