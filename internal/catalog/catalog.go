// Package catalog searches a music catalog for tracks and adds tracks to
// playlists.
package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/trackmatch/internal/model"
)

// ErrUnauthorized is returned when the catalog rejects the access token
var ErrUnauthorized = errors.New("catalog rejected the access token")

// RateLimitError is returned when the catalog asks the caller to back off
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("catalog rate limited, retry after %s", e.RetryAfter)
}

// Option configures a catalog client
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// Client is a catalog that can both search and add to playlists
type Client interface {
	Searcher
	PlaylistAdder
}

// Open builds the catalog client selected by the configuration
func Open(cfg model.CatalogConfig, opts ...Option) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case model.CatalogSpotify, "":
		return NewSpotify(cfg.Token, cfg.BaseURL, cfg.Market, opts...)
	case model.CatalogLocal:
		return LoadLocal(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unknown catalog provider: %s (supported: spotify, local)", cfg.Provider)
	}
}
