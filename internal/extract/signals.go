package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

// TitleSeparators split "Artist - Song" titles, tried in order
var TitleSeparators = []string{" - ", " – ", " — ", " • ", " | "}

var (
	descArtistPattern = regexp.MustCompile(`(?im)\b(?:artist|performed by|music by)[ \t]*:[ \t]*([^\r\n]+)`)
	descSongPattern   = regexp.MustCompile(`(?im)\b(?:song|track|title)[ \t]*:[ \t]*([^\r\n]+)`)

	vevoPattern          = regexp.MustCompile(`(?i)vevo`)
	officialWordsPattern = regexp.MustCompile(`(?i)\b(?:official|topic|music|records)\b`)
	channelSepPattern    = regexp.MustCompile(`\s*[-–—•|:]+\s*`)
)

// Classify turns the scraped fragments of a page into typed signals. It does
// not decide between conflicting signals; see Extract.
func (e *Extractor) Classify(page model.Page) []model.RawSignal {
	var signals []model.RawSignal

	add := func(kind model.SignalKind, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		signals = append(signals, model.RawSignal{
			Kind:   kind,
			Value:  value,
			Weight: e.weights.For(kind),
		})
	}

	// Structured metadata rows
	for _, row := range page.MetadataRows {
		switch strings.ToLower(strings.TrimSpace(row.Title)) {
		case "song":
			add(model.KindMetadataSong, row.Content)
		case "artist":
			add(model.KindMetadataArtist, row.Content)
		}
	}

	// Title
	if title := strings.TrimSpace(page.Title); title != "" {
		if _, _, ok := SplitTitle(title); ok {
			add(model.KindTitleSeparated, title)
		} else {
			add(model.KindTitleFull, title)
		}
	}

	// Description lines, first non-empty match per pattern
	if v := firstCapture(descArtistPattern, page.Description); v != "" {
		add(model.KindDescriptionArtist, v)
	}
	if v := firstCapture(descSongPattern, page.Description); v != "" {
		add(model.KindDescriptionSong, v)
	}

	// Channel name
	channel := strings.TrimSpace(page.Channel)
	switch {
	case channel == "":
	case vevoPattern.MatchString(channel):
		add(model.KindChannelVevo, cleanChannel(vevoPattern.ReplaceAllString(channel, " ")))
	case officialWordsPattern.MatchString(channel):
		add(model.KindChannelOfficial, cleanChannel(officialWordsPattern.ReplaceAllString(channel, " ")))
	}

	return signals
}

func firstCapture(re *regexp.Regexp, text string) string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return ""
}

// SplitTitle splits a title on the first separator found. ok is false when
// no separator occurs.
func SplitTitle(title string) (artist, song string, ok bool) {
	for _, sep := range TitleSeparators {
		if !strings.Contains(title, sep) {
			continue
		}
		parts := strings.Split(title, sep)
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
	}
	return "", "", false
}

// cleanChannel removes separators left behind after stripping indicator words
func cleanChannel(name string) string {
	name = channelSepPattern.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}
