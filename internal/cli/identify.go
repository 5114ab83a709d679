package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/trackmatch/internal/model"
)

var (
	outJSON     string
	outMD       string
	fragments   string
	timeout     time.Duration
	source      string
	catalogName string
	localPath   string
	playlistID  string
	autoAdd     bool
	noCache     bool
	insecureTLS bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// identifyCmd represents the identify command
var identifyCmd = &cobra.Command{
	Use:   "identify [url]",
	Short: "Identify the song in a video page and search the catalog for it",
	Long: `Identify reads one video page and:
- Collects title, description, channel name and metadata rows
- Fuses them into a song guess with a confidence
- Searches the catalog with several query variants concurrently
- Reports an automatic match, a list of candidates, or no match

Instead of a URL, already scraped fragments can be given as a JSON file.

Example:
  trackmatch identify https://www.youtube.com/watch?v=fJ9rUzIMcZQ
  trackmatch identify https://youtu.be/fJ9rUzIMcZQ --json report.json --md report.md
  trackmatch identify --fragments page.json --catalog local --local-path tracks.json
  trackmatch identify https://youtu.be/fJ9rUzIMcZQ --add --playlist 37i9dQZF1DX4JAvHpjipBk`,
	Args: func(cmd *cobra.Command, args []string) error {
		if fragments != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (- for stdout)")
	identifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	identifyCmd.Flags().StringVar(&fragments, "fragments", "", "read page fragments from a JSON file instead of fetching a URL")
	identifyCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
	addActionFlags(identifyCmd.Flags())
}

// addActionFlags registers the flags shared by every command that runs
// identify actions
func addActionFlags(fs *pflag.FlagSet) {
	fs.StringVar(&source, "source", model.SourceHTML, "how page fragments are obtained (html, ytdlp)")
	fs.StringVar(&catalogName, "catalog", model.CatalogSpotify, "catalog provider (spotify, local)")
	fs.StringVar(&localPath, "local-path", "", "JSON track list for the local catalog")
	fs.StringVar(&playlistID, "playlist", "", "playlist to add confident matches to")
	fs.BoolVar(&autoAdd, "add", false, "add a confident match to the playlist")
	fs.BoolVar(&noCache, "no-cache", false, "disable the catalog response cache")
	fs.BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	fs.BoolVar(&llmEnabled, "llm", false, "attach an LLM note to disambiguation lists")
	fs.StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	fs.StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// applyActionFlags overrides cfg with the action flags the user set
func applyActionFlags(fs *pflag.FlagSet, cfg *model.Config) error {
	if fs.Changed("source") {
		cfg.Source.Kind = source
	}
	if fs.Changed("catalog") {
		cfg.Catalog.Provider = catalogName
	}
	if fs.Changed("local-path") {
		cfg.Catalog.LocalPath = localPath
		if !fs.Changed("catalog") {
			cfg.Catalog.Provider = model.CatalogLocal
		}
	}
	if fs.Changed("playlist") {
		cfg.Catalog.PlaylistID = playlistID
	}
	if fs.Changed("add") {
		cfg.Catalog.AutoAdd = autoAdd
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
		if llmProvider == "openai" && cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	if cfg.Catalog.AutoAdd && cfg.Catalog.PlaylistID == "" {
		return fmt.Errorf("--add needs a playlist (--playlist or catalog.playlist_id)")
	}
	return nil
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyActionFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var report *model.Report
	if fragments != "" {
		page, err := readFragments(fragments)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Resolving fragments from %s\n", fragments)
		}
		report = s.pipeline.Run(ctx, *page)
	} else {
		if verbose {
			fmt.Fprintf(os.Stderr, "Identifying: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "Source: %s, catalog: %s\n\n", cfg.Source.Kind, cfg.Catalog.Provider)
		}
		report, err = s.pipeline.Identify(ctx, args[0])
		if err != nil {
			return fmt.Errorf("identify failed: %w", err)
		}
	}

	// Keep stdout clean for JSON
	if outJSON == "-" {
		s.pipeline.Renderer().SetOutput(os.Stderr, cfg.Output.Color)
	}

	if err := s.pipeline.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// readFragments loads a page from a JSON file
func readFragments(path string) (*model.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fragments: %w", err)
	}
	var page model.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("parse fragments %s: %w", path, err)
	}
	if page.IsEmpty() {
		return nil, fmt.Errorf("fragments %s carry no title, description, channel or metadata", path)
	}
	return &page, nil
}
