package model

import "time"

// Report represents the complete result of one identify action
type Report struct {
	ActionID  string    `json:"action_id"`            // Correlates log lines of one action
	Subject   string    `json:"subject"`              // Human-readable subject (video title or URL slug)
	SourceURL string    `json:"source_url,omitempty"` // Page that was identified
	FetchedAt time.Time `json:"fetched_at"`           // When the action ran
	FetchMeta FetchMeta `json:"fetch_meta"`           // HTTP metadata (zero for fragment input)

	Page      Page          `json:"page"`              // Raw scraped fragments
	MusicHint bool          `json:"music_hint"`        // Whether the page looks like a music video
	Signals   []RawSignal   `json:"signals"`           // Classified fragments
	Guess     *SongGuess    `json:"guess,omitempty"`   // Nil when the page could not be identified
	Queries   []QueryStat   `json:"queries,omitempty"` // One entry per dispatched query
	Status    Status        `json:"status"`            // Final status of the action
	Message   string        `json:"message,omitempty"` // Human-readable status line
	Outcome   *MatchOutcome `json:"outcome,omitempty"` // Nil when no search was performed
	Added     *AddResult    `json:"added,omitempty"`   // Set when a playlist add was attempted

	LLM *LLMNote `json:"llm,omitempty"` // Optional note for disambiguation (never affects the outcome)
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// QueryStat records what one catalog query returned
type QueryStat struct {
	Query      string `json:"query"`
	Results    int    `json:"results"`
	Cached     bool   `json:"cached,omitempty"`
	Error      string `json:"error,omitempty"` // Failure translated to an empty result
	DurationMs int64  `json:"duration_ms"`
}

// Status is the caller-facing state of an identify action
type Status string

const (
	StatusUnidentified Status = "unidentified" // No valid guess, no search performed
	StatusAutoMatch    Status = "auto_match"
	StatusDisambiguate Status = "disambiguate"
	StatusNoMatch      Status = "no_match"
	StatusCancelled    Status = "cancelled" // Context ended before resolution, nothing applied
)

// Caller-facing messages
const (
	MessageUnidentified = "could not detect song information"
	MessageNoMatch      = "no matching songs found"
	MessageDisambiguate = "multiple possible matches found, select one"
	MessageCancelled    = "identify action cancelled"
)

// StatusFor maps an outcome to the report status
func StatusFor(outcome MatchOutcome) Status {
	switch outcome.Disposition {
	case DispositionAutoMatch:
		return StatusAutoMatch
	case DispositionDisambiguate:
		return StatusDisambiguate
	default:
		return StatusNoMatch
	}
}

// AddResult records a playlist add attempt
type AddResult struct {
	URI        string `json:"uri"`
	PlaylistID string `json:"playlist_id"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// LLMNote contains an optional LLM-generated note about a disambiguation list
// CRITICAL: This never changes the ranking or the disposition
type LLMNote struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	NoteMD   string   `json:"note_md,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SubjectFromPage picks a reasonable subject for the report
func SubjectFromPage(p Page) string {
	if p.Title != "" {
		return p.Title
	}
	return p.URL
}
