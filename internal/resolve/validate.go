package resolve

import "github.com/ppiankov/trackmatch/internal/model"

// Sanitize drops candidates missing the fields scoring needs
func Sanitize(candidates []model.SearchCandidate) []model.SearchCandidate {
	out := make([]model.SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsWellFormed() {
			out = append(out, c)
		}
	}
	return out
}

// Dedupe keeps the first candidate for each URI
func Dedupe(candidates []model.SearchCandidate) []model.SearchCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]model.SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		out = append(out, c)
	}
	return out
}
