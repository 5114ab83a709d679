package extract

import (
	"strings"

	"github.com/ppiankov/trackmatch/internal/model"
)

var musicMetadataTitles = []string{"song", "artist", "album", "licensed to youtube by", "music", "provided to youtube by"}

var musicTitleIndicators = []string{
	"official music video", "official audio", "lyrics", "music video",
	"(audio)", "[audio]", "(official video)", "[official video]",
	"ft.", "feat.", "remix", "cover", "official", "resmi", "klip", "clip",
	"mv", "lyric video", "performance", "live", "acoustic",
}

var musicDescriptionIndicators = []string{
	"official music video", "official audio", "official video", "lyrics",
	"provided to youtube by", "released on:", "track:", "℗", "©",
	"listen on spotify", "stream on spotify", "available on spotify",
	"music video", "audio visualizer", "lyric video", "artist:", "song:",
	"album:", "genre:", "music video by", "official music video by",
	"all rights reserved", "auto-generated by youtube", "provided to youtube",
}

// MusicHint explains why a page was judged to be a music video
type MusicHint struct {
	IsMusic bool
	Reason  string // First indicator that matched, empty when IsMusic is false
}

// LooksLikeMusic is a substring heuristic over the page fragments. It is
// advisory only and never gates extraction.
func LooksLikeMusic(page model.Page) MusicHint {
	musicCategory := false
	for _, row := range page.MetadataRows {
		title := strings.ToLower(strings.TrimSpace(row.Title))
		content := strings.ToLower(strings.TrimSpace(row.Content))
		if title == "category" && content == "music" {
			musicCategory = true
		}
		for _, t := range musicMetadataTitles {
			if title == t {
				return MusicHint{IsMusic: true, Reason: "metadata:" + t}
			}
		}
	}

	title := strings.ToLower(page.Title)
	for _, ind := range musicTitleIndicators {
		if strings.Contains(title, ind) {
			return MusicHint{IsMusic: true, Reason: "title:" + ind}
		}
	}

	desc := strings.ToLower(page.Description)
	for _, ind := range musicDescriptionIndicators {
		if strings.Contains(desc, ind) {
			return MusicHint{IsMusic: true, Reason: "description:" + ind}
		}
	}

	if musicCategory {
		return MusicHint{IsMusic: true, Reason: "category:music"}
	}
	return MusicHint{}
}
