package resolve

import (
	"testing"

	"github.com/ppiankov/trackmatch/internal/model"
)

func newTestResolver() *Resolver {
	return NewResolver(model.DefaultConfig().Matching)
}

func TestResolver_EndToEndAutoMatch(t *testing.T) {
	r := newTestResolver()

	guess := model.SongGuess{Song: "Blinding Lights", Artist: "The Weeknd", Confidence: 90}
	candidates := []model.SearchCandidate{
		{URI: "u1", Name: "Blinding Lights", PrimaryArtist: "The Weeknd"},
		{URI: "u2", Name: "Blinding Lights (Remix)", PrimaryArtist: "DJ X"},
	}

	outcome := r.Resolve(candidates, guess)

	if outcome.Disposition != model.DispositionAutoMatch {
		t.Fatalf("Expected auto_match, got %s", outcome.Disposition)
	}
	if outcome.Match == nil || outcome.Match.URI != "u1" {
		t.Errorf("Expected match u1, got %+v", outcome.Match)
	}
	if len(outcome.Candidates) != 0 {
		t.Errorf("Expected no candidate list on auto_match, got %d", len(outcome.Candidates))
	}
}

func TestResolver_EmptyArtistAutoMatch(t *testing.T) {
	r := newTestResolver()

	guess := model.SongGuess{Song: "Bohemian Rhapsody", Confidence: 45}
	candidates := []model.SearchCandidate{
		{URI: "u1", Name: "Bohemian Rhapsody", PrimaryArtist: "Queen"},
	}

	outcome := r.Resolve(candidates, guess)

	if outcome.Disposition != model.DispositionAutoMatch {
		t.Fatalf("Expected auto_match for artist-less guess, got %s", outcome.Disposition)
	}
	if outcome.Match.ArtistSimilarity != 0.9 {
		t.Errorf("Expected artist similarity 0.9, got %v", outcome.Match.ArtistSimilarity)
	}
	if d := outcome.Match.Confidence - 0.94; d > 1e-9 || d < -1e-9 {
		t.Errorf("Expected confidence 0.94, got %v", outcome.Match.Confidence)
	}
}

func TestResolver_DuplicateURIScoredOnce(t *testing.T) {
	r := newTestResolver()

	guess := model.SongGuess{Song: "Hello", Artist: "Adele"}
	candidates := []model.SearchCandidate{
		{URI: "dup", Name: "Hello Again", PrimaryArtist: "Someone"},
		{URI: "dup", Name: "Hello", PrimaryArtist: "Adele"},
	}

	outcome := r.Resolve(candidates, guess)

	if outcome.Disposition != model.DispositionDisambiguate {
		t.Fatalf("Expected disambiguate, got %s", outcome.Disposition)
	}
	if len(outcome.Candidates) != 1 {
		t.Fatalf("Expected 1 candidate after dedup, got %d", len(outcome.Candidates))
	}
	if outcome.Candidates[0].Name != "Hello Again" {
		t.Errorf("Expected first occurrence kept, got %q", outcome.Candidates[0].Name)
	}
}

func TestResolver_CombinedThresholdEnforced(t *testing.T) {
	r := newTestResolver()

	c := model.ScoredCandidate{
		SongSimilarity:   0.75,
		ArtistSimilarity: 0.72,
		Confidence:       r.Scorer().Combine(0.75, 0.72),
	}

	if r.Qualifies(c) {
		t.Errorf("Expected candidate with confidence %.3f not to qualify", c.Confidence)
	}
}

func TestResolver_SubThresholdsEnforced(t *testing.T) {
	r := newTestResolver()

	// Strong artist masks a weak song
	c := model.ScoredCandidate{
		SongSimilarity:   0.6,
		ArtistSimilarity: 1.0,
		Confidence:       r.Scorer().Combine(0.6, 1.0),
	}
	if c.Confidence <= 0.8 {
		t.Fatalf("Test setup expects combined confidence above 0.8, got %v", c.Confidence)
	}
	if r.Qualifies(c) {
		t.Error("Expected weak song similarity to block the auto match")
	}
}

func TestResolver_EmptyCandidates(t *testing.T) {
	r := newTestResolver()

	outcome := r.Resolve(nil, model.SongGuess{Song: "Anything"})
	if outcome.Disposition != model.DispositionNoMatch {
		t.Errorf("Expected no_match, got %s", outcome.Disposition)
	}
	if outcome.Match != nil || outcome.Candidates != nil {
		t.Errorf("Expected empty no_match outcome, got %+v", outcome)
	}
}

func TestResolver_MalformedDropped(t *testing.T) {
	r := newTestResolver()

	candidates := []model.SearchCandidate{
		{URI: "", Name: "No URI", PrimaryArtist: "X"},
		{URI: "u1", Name: "  ", PrimaryArtist: "X"},
	}

	outcome := r.Resolve(candidates, model.SongGuess{Song: "No URI", Artist: "X"})
	if outcome.Disposition != model.DispositionNoMatch {
		t.Errorf("Expected malformed candidates to yield no_match, got %s", outcome.Disposition)
	}
}

func TestResolver_StableTies(t *testing.T) {
	r := newTestResolver()

	guess := model.SongGuess{Song: "Yesterday", Artist: "The Beatles"}
	candidates := []model.SearchCandidate{
		{URI: "a", Name: "Something Else", PrimaryArtist: "Nobody"},
		{URI: "b", Name: "Another Thing", PrimaryArtist: "Nobody"},
		{URI: "c", Name: "Yesterday", PrimaryArtist: "Cover Band"},
	}

	outcome := r.Resolve(candidates, guess)
	if outcome.Disposition != model.DispositionDisambiguate {
		t.Fatalf("Expected disambiguate, got %s", outcome.Disposition)
	}

	got := []string{outcome.Candidates[0].URI, outcome.Candidates[1].URI, outcome.Candidates[2].URI}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected order %v, got %v", want, got)
			break
		}
	}
}

func TestDedupe(t *testing.T) {
	in := []model.SearchCandidate{
		{URI: "x", Name: "1"},
		{URI: "y", Name: "2"},
		{URI: "x", Name: "3"},
	}

	out := Dedupe(in)
	if len(out) != 2 || out[0].Name != "1" || out[1].Name != "2" {
		t.Errorf("Unexpected dedup result %+v", out)
	}
}
