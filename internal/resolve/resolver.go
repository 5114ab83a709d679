// Package resolve scores catalog candidates against a guess and decides
// whether one of them is an automatic match.
package resolve

import (
	"sort"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/score"
)

// Thresholds gate the automatic match. All three must be exceeded.
type Thresholds struct {
	Confidence       float64
	SongSimilarity   float64
	ArtistSimilarity float64
}

// Resolver ranks candidates and picks the outcome
type Resolver struct {
	scorer     *score.Scorer
	thresholds Thresholds
}

// NewResolver creates a resolver from the matching configuration
func NewResolver(cfg model.MatchingConfig) *Resolver {
	return &Resolver{
		scorer: score.NewScorer(cfg),
		thresholds: Thresholds{
			Confidence:       cfg.MinConfidence,
			SongSimilarity:   cfg.MinSongSimilarity,
			ArtistSimilarity: cfg.MinArtistSimilarity,
		},
	}
}

// Scorer returns the scorer used for ranking
func (r *Resolver) Scorer() *score.Scorer {
	return r.scorer
}

// Resolve returns exactly one outcome for the candidate union. Candidates are
// expected in discovery order; ties keep that order.
func (r *Resolver) Resolve(candidates []model.SearchCandidate, guess model.SongGuess) model.MatchOutcome {
	unique := Dedupe(Sanitize(candidates))
	if len(unique) == 0 {
		return model.NoMatch()
	}

	ranked := r.Rank(unique, guess)

	for _, c := range ranked {
		if r.Qualifies(c) {
			return model.AutoMatch(c)
		}
	}

	return model.Disambiguate(ranked)
}

// Rank scores candidates and sorts them by descending confidence
func (r *Resolver) Rank(candidates []model.SearchCandidate, guess model.SongGuess) []model.ScoredCandidate {
	ranked := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, r.scorer.Score(guess, c))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// Qualifies reports whether a scored candidate clears every threshold
func (r *Resolver) Qualifies(c model.ScoredCandidate) bool {
	return c.Confidence > r.thresholds.Confidence &&
		c.SongSimilarity > r.thresholds.SongSimilarity &&
		c.ArtistSimilarity > r.thresholds.ArtistSimilarity
}
