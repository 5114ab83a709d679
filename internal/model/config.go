package model

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete trackmatch configuration
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Source       SourceConfig      `yaml:"source" mapstructure:"source"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Extraction   ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Matching     MatchingConfig    `yaml:"matching" mapstructure:"matching"`
	Catalog      CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// Page sources
const (
	SourceHTML  = "html"  // Fetch the page and scrape it
	SourceYtdlp = "ytdlp" // Probe the video with yt-dlp
)

// SourceConfig selects how page fragments are obtained for a URL
type SourceConfig struct {
	Kind      string `yaml:"kind" mapstructure:"kind"`
	YtdlpPath string `yaml:"ytdlp_path,omitempty" mapstructure:"ytdlp_path"` // Empty means look up yt-dlp on PATH
}

// CacheConfig controls caching of catalog search responses
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	QueryWorkers int `yaml:"query_workers" mapstructure:"query_workers"` // Concurrent catalog queries per action
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Concurrent actions in batch mode
}

// RateLimitConfig limits catalog requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// Weights is the confidence contribution and overwrite guard of each signal kind
type Weights struct {
	MetadataSong      int `yaml:"metadata_song" mapstructure:"metadata_song"`
	MetadataArtist    int `yaml:"metadata_artist" mapstructure:"metadata_artist"`
	TitleSeparated    int `yaml:"title_separated" mapstructure:"title_separated"`
	TitleFull         int `yaml:"title_full" mapstructure:"title_full"`
	DescriptionArtist int `yaml:"description_artist" mapstructure:"description_artist"`
	DescriptionSong   int `yaml:"description_song" mapstructure:"description_song"`
	ChannelVevo       int `yaml:"channel_vevo" mapstructure:"channel_vevo"`
	ChannelOfficial   int `yaml:"channel_official" mapstructure:"channel_official"`

	MetadataReplaceBelow    int `yaml:"metadata_replace_below" mapstructure:"metadata_replace_below"`
	DescriptionReplaceBelow int `yaml:"description_replace_below" mapstructure:"description_replace_below"`
	ChannelReplaceBelow     int `yaml:"channel_replace_below" mapstructure:"channel_replace_below"`
}

// For returns the weight of a signal kind
func (w Weights) For(kind SignalKind) int {
	switch kind {
	case KindMetadataSong:
		return w.MetadataSong
	case KindMetadataArtist:
		return w.MetadataArtist
	case KindTitleSeparated:
		return w.TitleSeparated
	case KindTitleFull:
		return w.TitleFull
	case KindDescriptionArtist:
		return w.DescriptionArtist
	case KindDescriptionSong:
		return w.DescriptionSong
	case KindChannelVevo:
		return w.ChannelVevo
	case KindChannelOfficial:
		return w.ChannelOfficial
	default:
		return 0
	}
}

// DefaultWeights returns the empirically chosen weight table
func DefaultWeights() Weights {
	return Weights{
		MetadataSong:            45,
		MetadataArtist:          45,
		TitleSeparated:          30,
		TitleFull:               10,
		DescriptionArtist:       35,
		DescriptionSong:         25,
		ChannelVevo:             40,
		ChannelOfficial:         30,
		MetadataReplaceBelow:    50,
		DescriptionReplaceBelow: 40,
		ChannelReplaceBelow:     30,
	}
}

// ExtractionConfig controls signal fusion
type ExtractionConfig struct {
	Weights       Weights `yaml:"weights" mapstructure:"weights"`
	MinConfidence int     `yaml:"min_confidence" mapstructure:"min_confidence"` // Guesses below this are discarded
}

// MatchingConfig controls candidate scoring and the auto-match gate
type MatchingConfig struct {
	ArtistWeight        float64 `yaml:"artist_weight" mapstructure:"artist_weight"`
	SongWeight          float64 `yaml:"song_weight" mapstructure:"song_weight"`
	MinConfidence       float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MinSongSimilarity   float64 `yaml:"min_song_similarity" mapstructure:"min_song_similarity"`
	MinArtistSimilarity float64 `yaml:"min_artist_similarity" mapstructure:"min_artist_similarity"`
}

// Catalog providers
const (
	CatalogSpotify = "spotify"
	CatalogLocal   = "local"
)

// CatalogConfig selects and configures the catalog search collaborator
type CatalogConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token,omitempty" mapstructure:"token"` // Access token, obtained elsewhere
	Market      string `yaml:"market,omitempty" mapstructure:"market"`
	SearchLimit int    `yaml:"search_limit" mapstructure:"search_limit"`
	LocalPath   string `yaml:"local_path,omitempty" mapstructure:"local_path"` // JSON track list for the local provider
	PlaylistID  string `yaml:"playlist_id,omitempty" mapstructure:"playlist_id"`
	AutoAdd     bool   `yaml:"auto_add" mapstructure:"auto_add"`
}

// LLMConfig configures the optional disambiguation note
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai" or "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls terminal output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "TrackMatch/0.1 (+https://github.com/ppiankov/trackmatch)",
			MaxBodyBytes:  4_000_000,
			MaxRetries:    3,
			RespectRobots: true,
		},
		Source: SourceConfig{
			Kind: SourceHTML,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 10 * time.Minute,
			DiskDir:   "",
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			QueryWorkers: 4,
			Workers:      4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Extraction: ExtractionConfig{
			Weights:       DefaultWeights(),
			MinConfidence: 20,
		},
		Matching: MatchingConfig{
			ArtistWeight:        0.6,
			SongWeight:          0.4,
			MinConfidence:       0.8,
			MinSongSimilarity:   0.7,
			MinArtistSimilarity: 0.7,
		},
		Catalog: CatalogConfig{
			Provider:    CatalogSpotify,
			BaseURL:     "https://api.spotify.com/v1",
			SearchLimit: 10,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 400,
		},
		Output: OutputConfig{
			Color: true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks ranges that would make matching meaningless
func (c *Config) Validate() error {
	var errs []error

	m := c.Matching
	for name, v := range map[string]float64{
		"matching.artist_weight":         m.ArtistWeight,
		"matching.song_weight":           m.SongWeight,
		"matching.min_confidence":        m.MinConfidence,
		"matching.min_song_similarity":   m.MinSongSimilarity,
		"matching.min_artist_similarity": m.MinArtistSimilarity,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}
	if m.ArtistWeight+m.SongWeight > 1.0000001 {
		errs = append(errs, fmt.Errorf("matching weights must sum to at most 1, got %v", m.ArtistWeight+m.SongWeight))
	}

	if c.Extraction.MinConfidence < 0 || c.Extraction.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("extraction.min_confidence must be within [0,100], got %d", c.Extraction.MinConfidence))
	}

	switch c.Source.Kind {
	case SourceHTML, SourceYtdlp:
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourceHTML, SourceYtdlp, c.Source.Kind))
	}

	switch c.Catalog.Provider {
	case CatalogSpotify:
	case CatalogLocal:
		if c.Catalog.LocalPath == "" {
			errs = append(errs, errors.New("catalog.local_path is required for the local provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.provider %q (supported: spotify, local)", c.Catalog.Provider))
	}

	if c.Catalog.SearchLimit <= 0 || c.Catalog.SearchLimit > 50 {
		errs = append(errs, fmt.Errorf("catalog.search_limit must be within [1,50], got %d", c.Catalog.SearchLimit))
	}

	return errors.Join(errs...)
}
