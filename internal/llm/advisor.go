package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Advisor attaches an optional note to disambiguation reports.
// CRITICAL: the note is produced after resolution and never alters it.
type Advisor struct {
	provider Provider
	config   Config
}

// NewAdvisor creates an advisor. A blank provider yields a disabled advisor.
func NewAdvisor(config Config) (*Advisor, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Advisor{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (a *Advisor) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// ProviderName returns the configured provider name, empty when disabled
func (a *Advisor) ProviderName() string {
	if !a.IsEnabled() {
		return ""
	}
	return a.provider.Name()
}

// Advise returns a note for a disambiguation report. It returns nil when the
// advisor is disabled or the report has nothing to disambiguate. Provider
// failures are reported as warnings on a disabled note, never as errors.
func (a *Advisor) Advise(ctx context.Context, report model.Report) *model.LLMNote {
	if !a.IsEnabled() || report.Guess == nil || report.Outcome == nil {
		return nil
	}
	if report.Outcome.Disposition != model.DispositionDisambiguate || len(report.Outcome.Candidates) == 0 {
		return nil
	}

	note := &model.LLMNote{
		Provider: a.provider.Name(),
		Model:    a.config.Model,
	}

	if !a.provider.IsAvailable(ctx) {
		note.Warnings = append(note.Warnings, fmt.Sprintf("LLM provider %s is not available", a.provider.Name()))
		return note
	}

	resp, err := a.provider.Advise(ctx, AdviseRequest{
		Page:       report.Page,
		Guess:      *report.Guess,
		Candidates: report.Outcome.Candidates,
		Model:      a.config.Model,
		MaxTokens:  a.config.MaxTokens,
	})
	if err != nil {
		note.Warnings = append(note.Warnings, fmt.Sprintf("LLM note failed: %v", err))
		return note
	}

	note.Enabled = true
	note.Model = resp.Model
	note.NoteMD = resp.Note
	if resp.TokensUsed > 0 {
		note.Warnings = append(note.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	}
	if len(resp.CitedURIs) > 0 {
		note.Warnings = append(note.Warnings, fmt.Sprintf("Verified %d citations", len(resp.CitedURIs)))
	}
	return note
}

// RenderSeparateMarkdown renders the note as a standalone markdown document
func RenderSeparateMarkdown(note *model.LLMNote) string {
	if note == nil || !note.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Note\n\n")
	b.WriteString("> **GENERATED CONTENT.** The match ranking was determined independently; this note does not change it.\n\n")
	fmt.Fprintf(&b, "- **Provider**: %s\n", note.Provider)
	if note.Model != "" {
		fmt.Fprintf(&b, "- **Model**: %s\n", note.Model)
	}
	b.WriteString("\n")

	if note.NoteMD == "" {
		b.WriteString("_No note generated._\n")
	} else {
		b.WriteString(note.NoteMD)
		b.WriteString("\n")
	}

	if len(note.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range note.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
