package model

import "strings"

// SignalKind classifies where a piece of evidence about the song came from.
// Declaration order is the precedence order used when fusing signals.
type SignalKind int

const (
	KindMetadataSong      SignalKind = iota // Structured "Song" metadata row
	KindMetadataArtist                      // Structured "Artist" metadata row
	KindTitleSeparated                      // Title split on a separator into artist and song
	KindTitleFull                           // Whole title used as song (no separator)
	KindDescriptionArtist                   // "artist:" style line in the description
	KindDescriptionSong                     // "song:" style line in the description
	KindChannelVevo                         // Channel name containing VEVO
	KindChannelOfficial                     // Channel name with official-indicator words
)

var kindNames = map[SignalKind]string{
	KindMetadataSong:      "metadata_song",
	KindMetadataArtist:    "metadata_artist",
	KindTitleSeparated:    "title_separated",
	KindTitleFull:         "title_full",
	KindDescriptionArtist: "description_artist",
	KindDescriptionSong:   "description_song",
	KindChannelVevo:       "channel_vevo",
	KindChannelOfficial:   "channel_official",
}

func (k SignalKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the kind as its snake_case name
func (k SignalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a snake_case kind name
func (k *SignalKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, n := range kindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return &UnknownKindError{Name: name}
}

// UnknownKindError is returned when a signal kind name is not recognized
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return "unknown signal kind: " + e.Name
}

// RawSignal is one independently sourced fragment of evidence about the song
type RawSignal struct {
	Kind   SignalKind `json:"kind"`
	Value  string     `json:"value"`
	Weight int        `json:"weight"` // Confidence contribution, fixed per kind
}

// MetadataRow is a structured title/content row scraped from the video page
// (e.g. "Song" / "Shape of You").
type MetadataRow struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Page holds the raw fragments scraped from a video page. The scraper does
// not interpret any of them.
type Page struct {
	URL          string        `json:"url,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Channel      string        `json:"channel,omitempty"`
	MetadataRows []MetadataRow `json:"metadata_rows,omitempty"`
}

// IsEmpty reports whether the page carries no usable fragment at all
func (p Page) IsEmpty() bool {
	return strings.TrimSpace(p.Title) == "" &&
		strings.TrimSpace(p.Description) == "" &&
		strings.TrimSpace(p.Channel) == "" &&
		len(p.MetadataRows) == 0
}

// SongGuess is the fused estimate of the song's identity
type SongGuess struct {
	Song            string       `json:"song"`
	Artist          string       `json:"artist"`
	Confidence      int          `json:"confidence"`                 // 0-100, sum of contributing weights
	Sources         []SignalKind `json:"sources"`                    // Kinds that contributed, in order
	PossibleArtists []string     `json:"possible_artists,omitempty"` // Distinct artist strings observed
}

// Valid reports whether the guess may drive a catalog search
func (g *SongGuess) Valid(minConfidence int) bool {
	if g == nil {
		return false
	}
	return g.Confidence >= minConfidence && strings.TrimSpace(g.Song) != ""
}

// HasPossibleArtist reports whether name was already observed as an artist
func (g *SongGuess) HasPossibleArtist(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, a := range g.PossibleArtists {
		if strings.ToLower(a) == key {
			return true
		}
	}
	return false
}

// AddPossibleArtist records name unless it is blank or already present
func (g *SongGuess) AddPossibleArtist(name string) {
	name = strings.TrimSpace(name)
	if name == "" || g.HasPossibleArtist(name) {
		return
	}
	g.PossibleArtists = append(g.PossibleArtists, name)
}
