package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/trackmatch/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *AdviseResponse
	err       error
	calls     int
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Advise(ctx context.Context, req AdviseRequest) (*AdviseResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func disambiguationReport() model.Report {
	ranked := []model.ScoredCandidate{
		{SearchCandidate: model.SearchCandidate{URI: "spotify:track:aaa", Name: "Hello", PrimaryArtist: "Adele"}, Confidence: 0.75},
		{SearchCandidate: model.SearchCandidate{URI: "spotify:track:bbb", Name: "Hello", PrimaryArtist: "Lionel Richie"}, Confidence: 0.5},
	}
	outcome := model.Disambiguate(ranked)
	return model.Report{
		Page:    model.Page{Title: "Hello"},
		Guess:   &model.SongGuess{Song: "Hello", Confidence: 10},
		Status:  model.StatusDisambiguate,
		Outcome: &outcome,
	}
}

func TestNewAdvisor_DisabledProvider(t *testing.T) {
	advisor, err := NewAdvisor(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if advisor.IsEnabled() {
		t.Error("Expected advisor to be disabled")
	}
	if advisor.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
	if note := advisor.Advise(context.Background(), disambiguationReport()); note != nil {
		t.Error("Expected nil note when disabled")
	}
}

func TestNewAdvisor_UnknownProvider(t *testing.T) {
	if _, err := NewAdvisor(Config{Provider: "mystery"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected ollama, got %s", p.Name())
	}
}

func TestAdvisor_SkipsNonDisambiguation(t *testing.T) {
	mock := &MockProvider{name: "mock", available: true, response: &AdviseResponse{Note: "x"}}
	advisor := &Advisor{provider: mock}

	report := disambiguationReport()
	outcome := model.AutoMatch(report.Outcome.Candidates[0])
	report.Outcome = &outcome

	if note := advisor.Advise(context.Background(), report); note != nil {
		t.Error("Expected no note for an auto match")
	}
	if mock.calls != 0 {
		t.Errorf("Expected provider not to be called, got %d calls", mock.calls)
	}
}

func TestAdvisor_ProviderUnavailable(t *testing.T) {
	advisor := &Advisor{provider: &MockProvider{name: "mock", available: false}}

	note := advisor.Advise(context.Background(), disambiguationReport())
	if note == nil {
		t.Fatal("Expected note with warnings")
	}
	if note.Enabled {
		t.Error("Expected note to be marked as disabled")
	}
	if len(note.Warnings) == 0 || !strings.Contains(note.Warnings[0], "not available") {
		t.Errorf("Expected unavailability warning, got %v", note.Warnings)
	}
}

func TestAdvisor_ProviderError(t *testing.T) {
	advisor := &Advisor{provider: &MockProvider{name: "mock", available: true, err: errors.New("boom")}}

	note := advisor.Advise(context.Background(), disambiguationReport())
	if note == nil || note.Enabled {
		t.Fatalf("Expected disabled note, got %+v", note)
	}
	if !strings.Contains(strings.Join(note.Warnings, " "), "boom") {
		t.Errorf("Expected warning to mention error: %v", note.Warnings)
	}
}

func TestAdvisor_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "mock",
		available: true,
		response: &AdviseResponse{
			Note:       "spotify:track:aaa is the Adele song.",
			CitedURIs:  []string{"spotify:track:aaa"},
			Model:      "test-model",
			TokensUsed: 42,
		},
	}
	advisor := &Advisor{provider: mock}

	report := disambiguationReport()
	before := report.Outcome.Candidates[0].URI

	note := advisor.Advise(context.Background(), report)
	if note == nil || !note.Enabled {
		t.Fatalf("Expected enabled note, got %+v", note)
	}
	if note.NoteMD != "spotify:track:aaa is the Adele song." {
		t.Errorf("Unexpected note: %s", note.NoteMD)
	}
	if note.Model != "test-model" || note.Provider != "mock" {
		t.Errorf("Unexpected provenance: %+v", note)
	}
	if report.Outcome.Candidates[0].URI != before || report.Status != model.StatusDisambiguate {
		t.Error("Advise must not alter the outcome")
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if RenderSeparateMarkdown(nil) != "" {
		t.Error("Expected empty markdown for nil note")
	}
	if RenderSeparateMarkdown(&model.LLMNote{Enabled: false}) != "" {
		t.Error("Expected empty markdown for disabled note")
	}

	md := RenderSeparateMarkdown(&model.LLMNote{
		Enabled:  true,
		Provider: "openai",
		Model:    "gpt-4o-mini",
		NoteMD:   "Pick the first one.",
		Warnings: []string{"Tokens used: 150"},
	})
	for _, want := range []string{"# LLM Note", "GENERATED CONTENT", "openai", "gpt-4o-mini", "Pick the first one.", "## Notes", "Tokens used: 150", "determined independently"} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}

	md = RenderSeparateMarkdown(&model.LLMNote{Enabled: true, Provider: "mock"})
	if !strings.Contains(md, "No note generated") {
		t.Error("Expected message about no note")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(adviseRequest())

	for _, want := range []string{
		"ONLY cite track URIs",
		"Title: Ed Sheeran - Shape of You",
		"Detected song: Shape of You",
		"Detected artist: Ed Sheeran",
		"1. Shape of You by Ed Sheeran [spotify:track:aaa] (78%)",
		"2. Shape of You - Acoustic by Ed Sheeran [spotify:track:bbb] (70%)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_NoCandidates(t *testing.T) {
	if !strings.Contains(BuildPrompt(AdviseRequest{}), "(No candidates)") {
		t.Error("Expected placeholder for empty candidate list")
	}
}

func TestBuildPrompt_ManyCandidates(t *testing.T) {
	req := AdviseRequest{}
	for i := 0; i < 15; i++ {
		req.Candidates = append(req.Candidates, model.ScoredCandidate{SearchCandidate: model.SearchCandidate{URI: "spotify:track:x", Name: "n"}})
	}
	if !strings.Contains(BuildPrompt(req), "... and 5 more") {
		t.Error("Expected truncation marker")
	}
}
