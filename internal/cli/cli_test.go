package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/trackmatch/internal/model"
)

func TestDecodeConfig_Defaults(t *testing.T) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		t.Fatalf("setDefaults failed: %v", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.HTTP.Timeout != want.HTTP.Timeout {
		t.Errorf("expected timeout %v, got %v", want.HTTP.Timeout, cfg.HTTP.Timeout)
	}
	if cfg.Extraction.Weights != want.Extraction.Weights {
		t.Errorf("expected default weights, got %+v", cfg.Extraction.Weights)
	}
	if cfg.Matching != want.Matching {
		t.Errorf("expected default matching, got %+v", cfg.Matching)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDecodeConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  timeout: 5s
matching:
  min_confidence: 0.9
extraction:
  weights:
    title_full: 15
catalog:
  search_limit: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRACKMATCH_CATALOG_MARKET", "DE")
	t.Setenv("SPOTIFY_ACCESS_TOKEN", "tok")
	t.Setenv("TRACKMATCH_CATALOG_SEARCH_LIMIT", "25")

	v := viper.New()
	if err := setDefaults(v); err != nil {
		t.Fatal(err)
	}
	v.SetConfigFile(path)
	configureEnv(v)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}

	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout from file, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Matching.MinConfidence != 0.9 {
		t.Errorf("expected min_confidence 0.9, got %v", cfg.Matching.MinConfidence)
	}
	if cfg.Extraction.Weights.TitleFull != 15 {
		t.Errorf("expected title_full 15, got %d", cfg.Extraction.Weights.TitleFull)
	}
	if cfg.Extraction.Weights.MetadataSong != 45 {
		t.Errorf("expected untouched weights to keep defaults, got %d", cfg.Extraction.Weights.MetadataSong)
	}
	if cfg.Catalog.SearchLimit != 25 {
		t.Errorf("expected env to override file, got %d", cfg.Catalog.SearchLimit)
	}
	if cfg.Catalog.Market != "DE" {
		t.Errorf("expected market DE, got %q", cfg.Catalog.Market)
	}
	if cfg.Catalog.Token != "tok" {
		t.Errorf("expected token from SPOTIFY_ACCESS_TOKEN, got %q", cfg.Catalog.Token)
	}
}

func TestApplyActionFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addActionFlags(fs)
	if err := fs.Parse([]string{"--local-path", "tracks.json", "--add", "--playlist", "p1", "--no-cache"}); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	if err := applyActionFlags(fs, cfg); err != nil {
		t.Fatalf("applyActionFlags failed: %v", err)
	}

	if cfg.Catalog.Provider != model.CatalogLocal {
		t.Errorf("expected --local-path to select the local catalog, got %q", cfg.Catalog.Provider)
	}
	if cfg.Catalog.LocalPath != "tracks.json" {
		t.Errorf("expected local path, got %q", cfg.Catalog.LocalPath)
	}
	if !cfg.Catalog.AutoAdd || cfg.Catalog.PlaylistID != "p1" {
		t.Errorf("expected auto add to p1, got %v %q", cfg.Catalog.AutoAdd, cfg.Catalog.PlaylistID)
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled")
	}
	if cfg.Source.Kind != model.SourceHTML {
		t.Errorf("unset flags must not override config, got source %q", cfg.Source.Kind)
	}
}

func TestApplyActionFlags_AddWithoutPlaylist(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addActionFlags(fs)
	if err := fs.Parse([]string{"--add"}); err != nil {
		t.Fatal(err)
	}

	if err := applyActionFlags(fs, model.DefaultConfig()); err == nil {
		t.Error("expected error for --add without a playlist")
	}
}

func TestApplyActionFlags_LLMNeedsKey(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addActionFlags(fs)
	if err := fs.Parse([]string{"--llm"}); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	err := applyActionFlags(fs, cfg)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	if err := applyActionFlags(fs, cfg); err != nil {
		t.Errorf("unexpected error with key set: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", cfg.LLM.Provider)
	}
}

func TestReadFragments(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "page.json")
	if err := os.WriteFile(good, []byte(`{"title":"The Weeknd - Blinding Lights","metadata_rows":[{"title":"Song","content":"Blinding Lights"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	page, err := readFragments(good)
	if err != nil {
		t.Fatalf("readFragments failed: %v", err)
	}
	if page.Title != "The Weeknd - Blinding Lights" || len(page.MetadataRows) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readFragments(empty); err == nil {
		t.Error("expected error for empty fragments")
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"title":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readFragments(broken); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Weeknd - Blinding Lights", "The-Weeknd-Blinding-Lights"},
		{"a/b\\c:d*e?f", "a-b-c-d-e-f"},
		{"Sezen Aksu – Gülümse", "Sezen-Aksu-Gülümse"},
		{"../../etc/passwd", "etc-passwd"},
		{"???", "report"},
		{"", "report"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("ü", 150)
	if got := sanitizeFilename(long); len([]rune(got)) != 100 {
		t.Errorf("expected 100 runes, got %d", len([]rune(got)))
	}
}

func TestUniqueSlug(t *testing.T) {
	used := make(map[string]int)
	if got := uniqueSlug(used, "song"); got != "song" {
		t.Errorf("expected song, got %s", got)
	}
	if got := uniqueSlug(used, "song"); got != "song-2" {
		t.Errorf("expected song-2, got %s", got)
	}
	if got := uniqueSlug(used, "other"); got != "other" {
		t.Errorf("expected other, got %s", got)
	}
}
