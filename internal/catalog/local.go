package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/normalize"
)

// LocalCatalog is an offline catalog backed by an in-memory full-text index.
// Playlists are kept in memory.
type LocalCatalog struct {
	index  bleve.Index
	tracks map[string]model.SearchCandidate

	mu        sync.Mutex
	playlists map[string][]string
}

var _ Client = (*LocalCatalog)(nil)

// trackDoc is the indexed form of a track. Fields hold normalized text so
// queries built from normalized guesses match regardless of diacritics.
type trackDoc struct {
	Name    string `json:"name"`
	Artists string `json:"artists"`
	Album   string `json:"album"`
}

// localTrack is the on-disk form of a track
type localTrack struct {
	URI        string   `json:"uri" yaml:"uri"`
	Name       string   `json:"name" yaml:"name"`
	Artists    []string `json:"artists" yaml:"artists"`
	Album      string   `json:"album,omitempty" yaml:"album,omitempty"`
	DurationMs int      `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
}

// LoadLocal reads a JSON or YAML track list and indexes it
func LoadLocal(path string) (*LocalCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("local catalog path required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local catalog: %w", err)
	}

	var raw []localTrack
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse local catalog %s: %w", path, err)
	}

	tracks := make([]model.SearchCandidate, 0, len(raw))
	for _, t := range raw {
		c := model.SearchCandidate{
			URI:        t.URI,
			Name:       t.Name,
			AllArtists: t.Artists,
			Album:      t.Album,
			DurationMs: t.DurationMs,
			PreviewURL: t.PreviewURL,
		}
		if len(t.Artists) > 0 {
			c.PrimaryArtist = t.Artists[0]
		}
		tracks = append(tracks, c)
	}

	return NewLocal(tracks)
}

// NewLocal indexes the given tracks. Tracks without a URI or name are skipped.
func NewLocal(tracks []model.SearchCandidate) (*LocalCatalog, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("artists", textFieldMapping)
	docMapping.AddFieldMappingsAt("album", textFieldMapping)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create local index: %w", err)
	}

	lc := &LocalCatalog{
		index:     index,
		tracks:    make(map[string]model.SearchCandidate, len(tracks)),
		playlists: make(map[string][]string),
	}

	batch := index.NewBatch()
	for _, t := range tracks {
		if !t.IsWellFormed() {
			continue
		}
		if _, dup := lc.tracks[t.URI]; dup {
			continue
		}
		lc.tracks[t.URI] = t
		doc := trackDoc{
			Name:    normalize.Fold(t.Name),
			Artists: normalize.Fold(t.ArtistsDisplay()),
			Album:   normalize.Fold(t.Album),
		}
		if err := batch.Index(t.URI, doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("index track %s: %w", t.URI, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("index tracks: %w", err)
	}

	return lc, nil
}

// Name returns the provider name
func (c *LocalCatalog) Name() string {
	return model.CatalogLocal
}

// Len returns the number of indexed tracks
func (c *LocalCatalog) Len() int {
	return len(c.tracks)
}

// Search runs a match query over name, artists and album
func (c *LocalCatalog) Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(normalize.Fold(query)))
	req.Size = limit
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("local search failed: %w", err)
	}

	out := make([]model.SearchCandidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if t, ok := c.tracks[hit.ID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// AddToPlaylist records tracks on an in-memory playlist
func (c *LocalCatalog) AddToPlaylist(ctx context.Context, playlistID string, uris ...string) error {
	if strings.TrimSpace(playlistID) == "" {
		return errors.New("playlist id required")
	}
	for _, u := range uris {
		if _, ok := c.tracks[u]; !ok {
			return fmt.Errorf("unknown track %s", u)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlists[playlistID] = append(c.playlists[playlistID], uris...)
	return nil
}

// Playlist returns the URIs added to a playlist, in order
func (c *LocalCatalog) Playlist(playlistID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.playlists[playlistID]...)
}

// Close releases the index
func (c *LocalCatalog) Close() error {
	return c.index.Close()
}
