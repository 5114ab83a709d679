package model

import (
	"math"
	"strings"
)

// SearchCandidate is one catalog track returned by a search query
type SearchCandidate struct {
	URI           string   `json:"uri"`                   // Catalog identifier, identity key for dedup
	Name          string   `json:"name"`                  // Track name
	PrimaryArtist string   `json:"primary_artist"`        // First credited artist
	AllArtists    []string `json:"all_artists,omitempty"` // Every credited artist
	Album         string   `json:"album,omitempty"`
	DurationMs    int      `json:"duration_ms,omitempty"`
	PreviewURL    string   `json:"preview_url,omitempty"`
}

// IsWellFormed reports whether the candidate carries the fields scoring needs
func (c SearchCandidate) IsWellFormed() bool {
	return strings.TrimSpace(c.URI) != "" && strings.TrimSpace(c.Name) != ""
}

// ArtistsDisplay joins all credited artists for display
func (c SearchCandidate) ArtistsDisplay() string {
	if len(c.AllArtists) == 0 {
		return c.PrimaryArtist
	}
	return strings.Join(c.AllArtists, ", ")
}

// ScoredCandidate is a candidate scored against one SongGuess
type ScoredCandidate struct {
	SearchCandidate
	SongSimilarity   float64 `json:"song_similarity"`
	ArtistSimilarity float64 `json:"artist_similarity"`
	Confidence       float64 `json:"confidence"` // artist*0.6 + song*0.4 by default
}

// DisplayConfidence returns the confidence scaled to a 0-100 percentage
func (c ScoredCandidate) DisplayConfidence() int {
	return int(math.Round(c.Confidence * 100))
}

// Disposition classifies a match outcome
type Disposition string

const (
	DispositionAutoMatch    Disposition = "auto_match"   // Confident single answer
	DispositionDisambiguate Disposition = "disambiguate" // Plausible but uncertain candidates
	DispositionNoMatch      Disposition = "no_match"     // Nothing usable returned
)

// MatchOutcome is the result of resolving candidates against a guess.
// Exactly one of Match (auto_match) or Candidates (disambiguate) is set;
// neither is set for no_match.
type MatchOutcome struct {
	Disposition Disposition       `json:"disposition"`
	Match       *ScoredCandidate  `json:"match,omitempty"`
	Candidates  []ScoredCandidate `json:"candidates,omitempty"`
}

// AutoMatch builds an auto-match outcome
func AutoMatch(c ScoredCandidate) MatchOutcome {
	return MatchOutcome{Disposition: DispositionAutoMatch, Match: &c}
}

// Disambiguate builds a disambiguation outcome over a ranked list
func Disambiguate(ranked []ScoredCandidate) MatchOutcome {
	return MatchOutcome{Disposition: DispositionDisambiguate, Candidates: ranked}
}

// NoMatch builds an empty outcome
func NoMatch() MatchOutcome {
	return MatchOutcome{Disposition: DispositionNoMatch}
}
