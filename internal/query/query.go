// Package query turns a song guess into catalog search queries.
package query

import (
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/normalize"
)

// Generate returns the ordered search queries for a guess: artist and song
// combined, song alone, then one query per artist token. Duplicates are kept;
// candidates are deduplicated downstream.
func Generate(guess model.SongGuess) []string {
	song := normalize.String(guess.Song)
	artist := normalize.String(guess.Artist)

	queries := []string{
		strings.TrimSpace(artist + " " + song),
		song,
	}
	for _, tok := range strings.Fields(artist) {
		queries = append(queries, tok+" "+song)
	}
	return queries
}

// Distinct returns queries with duplicates removed, preserving order
func Distinct(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
