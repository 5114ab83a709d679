package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/trackmatch/internal/model"
)

// defaultRetryAfter applies when a 429 carries no usable Retry-After header
const defaultRetryAfter = 5 * time.Second

// SpotifyClient talks to the Spotify Web API. The access token is obtained
// elsewhere and passed in as-is.
type SpotifyClient struct {
	token      string
	baseURL    string
	market     string
	httpClient *http.Client
}

var _ Client = (*SpotifyClient)(nil)

// NewSpotify creates a Spotify Web API client
func NewSpotify(token, baseURL, market string, opts ...Option) (*SpotifyClient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("spotify access token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("spotify base url required")
	}

	o := options{httpClient: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	return &SpotifyClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     strings.TrimSpace(market),
		httpClient: o.httpClient,
	}, nil
}

// Name returns the provider name
func (c *SpotifyClient) Name() string {
	return model.CatalogSpotify
}

// BaseURL returns the API root, used as the rate limiting key
func (c *SpotifyClient) BaseURL() string {
	return c.baseURL
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	URI     string `json:"uri"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	DurationMs int     `json:"duration_ms"`
	PreviewURL *string `json:"preview_url"`
}

func (t spotifyTrack) candidate() model.SearchCandidate {
	c := model.SearchCandidate{
		URI:        t.URI,
		Name:       t.Name,
		Album:      t.Album.Name,
		DurationMs: t.DurationMs,
	}
	for _, a := range t.Artists {
		c.AllArtists = append(c.AllArtists, a.Name)
	}
	if len(c.AllArtists) > 0 {
		c.PrimaryArtist = c.AllArtists[0]
	}
	if t.PreviewURL != nil {
		c.PreviewURL = *t.PreviewURL
	}
	return c
}

// Search performs a track search
func (c *SpotifyClient) Search(ctx context.Context, query string, limit int) ([]model.SearchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse spotify url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if c.market != "" {
		params.Set("market", c.market)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var payload spotifySearchResponse
	if err := c.do(req, http.StatusOK, &payload); err != nil {
		return nil, fmt.Errorf("spotify search %q: %w", query, err)
	}

	candidates := make([]model.SearchCandidate, 0, len(payload.Tracks.Items))
	for _, item := range payload.Tracks.Items {
		candidates = append(candidates, item.candidate())
	}
	return candidates, nil
}

// AddToPlaylist appends tracks to a playlist
func (c *SpotifyClient) AddToPlaylist(ctx context.Context, playlistID string, uris ...string) error {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return errors.New("playlist id required")
	}
	if len(uris) == 0 {
		return errors.New("no tracks to add")
	}

	body, err := json.Marshal(map[string][]string{"uris": uris})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("spotify add to playlist %s: %w", playlistID, err)
	}
	return nil
}

// do executes an authorized request and decodes the response into out
func (c *SpotifyClient) do(req *http.Request, wantStatus int, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode != wantStatus && resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
