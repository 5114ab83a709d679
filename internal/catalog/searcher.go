package catalog

import (
	"context"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Searcher runs keyword searches against a catalog
type Searcher interface {
	// Name returns the provider name
	Name() string

	// Search returns up to limit candidates for the query
	Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error)
}

// PlaylistAdder adds tracks to a playlist
type PlaylistAdder interface {
	AddToPlaylist(ctx context.Context, playlistID string, uris ...string) error
}
