package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Transform is one step of the cleanup pipeline
type Transform func(string) string

var (
	qualifierPattern = regexp.MustCompile(`(?i)\s*[\(\[][^\)\]]*\b(?:official|lyrics?|live|cover|audio|video|visualizer|remaster(?:ed)?|hd|4k|mv|explicit|clip|klip|resmi|version|edit)\b[^\)\]]*[\)\]]`)
	unwantedPattern  = regexp.MustCompile(`(?i)\b(?:official artist channel|official channel|channel|official|music|records|entertainment|vevo|topic)\b`)
	edgeNonWord      = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)
)

// edgePunctuation is trimmed from both fields as the last step
const edgePunctuation = " \t\r\n-–—•|:;,.\"'"

// SongTransforms clean a song name, applied in order
var SongTransforms = []Transform{
	StripQualifiers,
	TrimEdges,
}

// ArtistTransforms clean an artist name, applied in order
var ArtistTransforms = []Transform{
	DedupeWords,
	RemoveUnwanted,
	StripNonWordEdges,
	TrimEdges,
}

// Apply runs transforms over s in order
func Apply(s string, transforms []Transform) string {
	for _, t := range transforms {
		s = t(s)
	}
	return s
}

// StripQualifiers removes bracketed noise such as "(Official Video)"
func StripQualifiers(s string) string {
	return collapse(qualifierPattern.ReplaceAllString(s, " "))
}

// DedupeWords drops repeated words, keeping the first occurrence
func DedupeWords(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(s) {
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// RemoveUnwanted strips channel boilerplate phrases and words
func RemoveUnwanted(s string) string {
	return collapse(unwantedPattern.ReplaceAllString(s, " "))
}

// StripNonWordEdges removes leading and trailing non-letter, non-digit runes
func StripNonWordEdges(s string) string {
	return edgeNonWord.ReplaceAllString(s, "")
}

// TrimEdges trims whitespace and separator punctuation
func TrimEdges(s string) string {
	return strings.Trim(s, edgePunctuation)
}

// RemoveArtist removes the first case-insensitive occurrence of artist from
// song, unless that would leave nothing
func RemoveArtist(song, artist string) string {
	if artist == "" {
		return song
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(artist))
	loc := re.FindStringIndex(song)
	if loc == nil {
		return song
	}
	stripped := TrimEdges(collapse(song[:loc[0]] + " " + song[loc[1]:]))
	if stripped == "" {
		return song
	}
	return stripped
}

// cleanup runs the post-processing pipeline over a folded guess
func cleanup(g model.SongGuess) model.SongGuess {
	if strings.TrimSpace(g.Song) == "" {
		g.Song = ""
		return g
	}

	g.Song = Apply(g.Song, SongTransforms)
	if g.Artist != "" {
		g.Artist = Apply(g.Artist, ArtistTransforms)
		g.Song = RemoveArtist(g.Song, g.Artist)
	}

	g.Song = TrimEdges(g.Song)
	g.Artist = TrimEdges(g.Artist)
	return g
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
