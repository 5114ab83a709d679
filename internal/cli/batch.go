package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Identify songs for multiple URLs from a file in parallel",
	Long: `Batch identifies the songs of many video pages concurrently:
- Read URLs from input file (one per line, # starts a comment)
- Run identify actions in parallel with a configurable worker count
- Write a JSON and Markdown report per URL

Example:
  trackmatch batch urls.txt
  trackmatch batch urls.txt --concurrency 8 --output-dir ./reports
  trackmatch batch urls.txt --add --playlist 37i9dQZF1DX4JAvHpjipBk`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent actions (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./trackmatch-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	addActionFlags(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyActionFlags(cmd.Flags(), cfg); err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n\n", outputDir)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(s.pipeline, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := s.pipeline.Renderer()
	counts := make(map[model.Status]int)
	failures := 0
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			continue
		}

		report := result.Report
		counts[report.Status]++

		slug := uniqueSlug(used, sanitizeFilename(report.Subject))
		if err := renderer.RenderJSON(report, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.URL, err)
			continue
		}
		if err := renderer.RenderMarkdown(report, filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.URL, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s: %s\n", report.Subject, report.Status)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:         %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Matched:       %d\n", counts[model.StatusAutoMatch])
	fmt.Fprintf(os.Stderr, "  Disambiguate:  %d\n", counts[model.StatusDisambiguate])
	fmt.Fprintf(os.Stderr, "  No match:      %d\n", counts[model.StatusNoMatch])
	fmt.Fprintf(os.Stderr, "  Unidentified:  %d\n", counts[model.StatusUnidentified])
	fmt.Fprintf(os.Stderr, "  Failures:      %d\n", failures)

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._]+`)

// sanitizeFilename turns a report subject into a portable file name
func sanitizeFilename(s string) string {
	s = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-.")

	if r := []rune(s); len(r) > 100 {
		s = strings.TrimRight(string(r[:100]), "-.")
	}
	if s == "" {
		return "report"
	}
	return s
}

// uniqueSlug appends a counter when two reports share a subject
func uniqueSlug(used map[string]int, slug string) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
