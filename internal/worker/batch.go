package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Identifier identifies the song playing at a URL
type Identifier interface {
	Identify(ctx context.Context, url string) (*model.Report, error)
}

// IdentifyJob represents one identify action in a batch
type IdentifyJob struct {
	Index      int
	URL        string
	Identifier Identifier
}

// Execute executes the identify job
func (j *IdentifyJob) Execute(ctx context.Context) Result {
	report, err := j.Identifier.Identify(ctx, j.URL)
	return &IdentifyResult{
		Index:  j.Index,
		URL:    j.URL,
		Report: report,
		Error:  err,
	}
}

// IdentifyResult represents the result of an identify job
type IdentifyResult struct {
	Index  int
	URL    string
	Report *model.Report
	Error  error
}

// GetError returns the error from the identify result
func (r *IdentifyResult) GetError() error {
	return r.Error
}

// BatchProcessor identifies multiple URLs concurrently
type BatchProcessor struct {
	identifier  Identifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(identifier Identifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		identifier:  identifier,
		concurrency: concurrency,
	}
}

// ProcessURLs identifies multiple URLs concurrently. Results keep input order;
// a URL dropped by cancellation gets a context error.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*IdentifyResult {
	if len(urls) == 0 {
		return []*IdentifyResult{}
	}

	jobs := make([]Job, len(urls))
	for i, url := range urls {
		jobs[i] = &IdentifyJob{
			Index:      i,
			URL:        url,
			Identifier: b.identifier,
		}
	}

	results := NewPoolContext(ctx, b.concurrency).Run(jobs)

	ordered := make([]*IdentifyResult, len(urls))
	for _, result := range results {
		r := result.(*IdentifyResult)
		ordered[r.Index] = r
	}
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &IdentifyResult{Index: i, URL: urls[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*IdentifyResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate URLs
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}