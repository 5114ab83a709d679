// Package score compares catalog candidates against a song guess.
package score

import (
	"fmt"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Scorer combines song and artist similarity into one confidence value
type Scorer struct {
	artistWeight float64
	songWeight   float64
	similarity   func(a, b string) float64
}

// NewScorer creates a scorer using the configured weights
func NewScorer(cfg model.MatchingConfig) *Scorer {
	return &Scorer{
		artistWeight: cfg.ArtistWeight,
		songWeight:   cfg.SongWeight,
		similarity:   Similarity,
	}
}

// Score compares one candidate against the guess. Only the candidate's
// primary artist is compared.
func (s *Scorer) Score(guess model.SongGuess, c model.SearchCandidate) model.ScoredCandidate {
	songSim := s.similarity(guess.Song, c.Name)
	artistSim := s.similarity(guess.Artist, c.PrimaryArtist)

	return model.ScoredCandidate{
		SearchCandidate:  c,
		SongSimilarity:   songSim,
		ArtistSimilarity: artistSim,
		Confidence:       s.Combine(songSim, artistSim),
	}
}

// Combine applies the weighted formula to two sub-scores
func (s *Scorer) Combine(songSim, artistSim float64) float64 {
	return artistSim*s.artistWeight + songSim*s.songWeight
}

// Formula describes the combination for logs and reports
func (s *Scorer) Formula() string {
	return fmt.Sprintf("artist_similarity * %.2f + song_similarity * %.2f", s.artistWeight, s.songWeight)
}
