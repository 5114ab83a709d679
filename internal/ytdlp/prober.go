// Package ytdlp obtains page fragments by probing a video with yt-dlp instead
// of scraping its HTML.
package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Info is the subset of yt-dlp's --dump-single-json output used here
type Info struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Channel     string   `json:"channel"`
	Uploader    string   `json:"uploader"`
	Track       string   `json:"track"`  // sometimes present
	Artist      string   `json:"artist"` // sometimes present
	Album       string   `json:"album"`
	Categories  []string `json:"categories"`
	WebpageURL  string   `json:"webpage_url"`
}

// Prober runs yt-dlp against a URL
type Prober struct {
	run func(ctx context.Context, url string) (string, error)
}

// NewProber creates a prober. An empty executable looks yt-dlp up on PATH.
func NewProber(executable string) *Prober {
	return &Prober{
		run: func(ctx context.Context, url string) (string, error) {
			cmd := ytdlp.New().
				DumpSingleJSON().
				NoPlaylist().
				NoWarnings().
				SkipDownload()
			if executable != "" {
				cmd = cmd.SetExecutable(executable)
			}
			res, err := cmd.Run(ctx, url)
			if err != nil {
				if res != nil && res.Stderr != "" {
					return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(res.Stderr))
				}
				return "", fmt.Errorf("yt-dlp failed: %w", err)
			}
			return res.Stdout, nil
		},
	}
}

// Probe returns the page fragments of the video at url
func (p *Prober) Probe(ctx context.Context, url string) (*model.Page, error) {
	out, err := p.run(ctx, url)
	if err != nil {
		return nil, err
	}
	page, err := ParsePage([]byte(out))
	if err != nil {
		return nil, err
	}
	if page.URL == "" {
		page.URL = url
	}
	return page, nil
}

// ParsePage converts yt-dlp JSON into page fragments. Structured track and
// artist fields become metadata rows, the way YouTube renders them.
func ParsePage(data []byte) (*model.Page, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(info.Title) == "" {
		return nil, errors.New("missing title in yt-dlp output")
	}

	page := &model.Page{
		URL:         info.WebpageURL,
		Title:       info.Title,
		Description: info.Description,
		Channel:     info.Channel,
	}
	if page.Channel == "" {
		page.Channel = info.Uploader
	}

	addRow := func(title, content string) {
		if content = strings.TrimSpace(content); content != "" {
			page.MetadataRows = append(page.MetadataRows, model.MetadataRow{Title: title, Content: content})
		}
	}
	addRow("Song", info.Track)
	addRow("Artist", info.Artist)
	addRow("Album", info.Album)
	for _, c := range info.Categories {
		addRow("Category", c)
	}

	return page, nil
}
