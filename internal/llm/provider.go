package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Advise writes a short note comparing the candidates of a disambiguation list
	Advise(ctx context.Context, req AdviseRequest) (*AdviseResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AdviseRequest contains the input for a disambiguation note
type AdviseRequest struct {
	// Page holds the scraped fragments the guess was built from
	Page model.Page

	// Guess is the fused song estimate
	Guess model.SongGuess

	// Candidates is the ranked list shown to the user. Their URIs are the
	// STRICT allowlist of identifiers the note may cite.
	Candidates []model.ScoredCandidate

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AllowedURIs returns the candidate URIs the note may cite
func (r AdviseRequest) AllowedURIs() []string {
	uris := make([]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		uris = append(uris, c.URI)
	}
	return uris
}

// AdviseResponse contains the LLM's note
type AdviseResponse struct {
	// Note is the generated markdown text
	Note string

	// CitedURIs are the track URIs the LLM actually cited (for verification)
	CitedURIs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 400,
	}
}

// maxPromptCandidates bounds the candidate list sent to the model
const maxPromptCandidates = 10

// BuildPrompt constructs the default prompt for a disambiguation note
func BuildPrompt(req AdviseRequest) string {
	var b strings.Builder

	b.WriteString(`You are helping a user pick the right catalog track for a video. The ranking and scores below were computed independently and are FINAL.

CRITICAL RULES:
1. You may ONLY cite track URIs from the candidate list below.
2. Do not reorder the candidates or invent new ones.
3. Point out differences that matter (remix, live, cover, karaoke, different artist).
4. If nothing distinguishes the candidates, say so.

Video:
`)
	fmt.Fprintf(&b, "- Title: %s\n", req.Page.Title)
	if req.Page.Channel != "" {
		fmt.Fprintf(&b, "- Channel: %s\n", req.Page.Channel)
	}
	fmt.Fprintf(&b, "- Detected song: %s\n", req.Guess.Song)
	if req.Guess.Artist != "" {
		fmt.Fprintf(&b, "- Detected artist: %s\n", req.Guess.Artist)
	}
	fmt.Fprintf(&b, "- Detection confidence: %d/100\n", req.Guess.Confidence)

	b.WriteString("\nCandidates (ranked):\n")
	b.WriteString(joinCandidates(req.Candidates))

	b.WriteString("\n\nWrite 2-3 sentences of guidance in markdown.")

	return b.String()
}

func joinCandidates(candidates []model.ScoredCandidate) string {
	if len(candidates) == 0 {
		return "(No candidates)"
	}
	var lines []string
	for i, c := range candidates {
		if i >= maxPromptCandidates {
			lines = append(lines, fmt.Sprintf("... and %d more", len(candidates)-maxPromptCandidates))
			break
		}
		line := fmt.Sprintf("%d. %s by %s [%s] (%d%%)", i+1, c.Name, c.ArtistsDisplay(), c.URI, c.DisplayConfidence())
		if c.Album != "" {
			line += " from " + c.Album
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
