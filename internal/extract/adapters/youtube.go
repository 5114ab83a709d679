package adapters

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/trackmatch/internal/model"
)

// YouTubeAdapter scrapes watch pages from youtube.com and youtu.be
type YouTubeAdapter struct {
	BaseAdapter
}

// NewYouTubeAdapter creates a new YouTube adapter
func NewYouTubeAdapter() *YouTubeAdapter {
	return &YouTubeAdapter{}
}

// Name returns the adapter name
func (a *YouTubeAdapter) Name() string {
	return "youtube"
}

// CanHandle checks if this is a YouTube URL
func (a *YouTubeAdapter) CanHandle(rawURL string, contentType string) bool {
	return IsYouTubeURL(rawURL)
}

// IsYouTubeURL reports whether rawURL points at a YouTube host
func IsYouTubeURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "youtube.com" || host == "music.youtube.com" || host == "youtu.be"
}

var titleSuffix = regexp.MustCompile(`\s*-\s*YouTube\s*$`)

// playerResponseMarker precedes the embedded player JSON in watch pages
const playerResponseMarker = "ytInitialPlayerResponse"

// playerResponse is the subset of the embedded player JSON used for fragments
type playerResponse struct {
	VideoDetails struct {
		Title            string `json:"title"`
		Author           string `json:"author"`
		ShortDescription string `json:"shortDescription"`
	} `json:"videoDetails"`
	Microformat struct {
		PlayerMicroformatRenderer struct {
			Category      string `json:"category"`
			OwnerChannel  string `json:"ownerChannelName"`
			ExternalTitle string `json:"title"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
}

// ExtractPage collects fragments from the rendered DOM and the embedded
// player JSON. DOM values win; the JSON fills the gaps.
func (a *YouTubeAdapter) ExtractPage(doc *html.Node, rawURL string) (*model.Page, error) {
	page := &model.Page{
		Title:       a.extractTitle(doc),
		Description: firstNonEmpty(a.MetaContent(doc, "description"), a.MetaContent(doc, "og:description")),
		Channel:     a.extractChannel(doc),
	}
	page.MetadataRows = a.extractRows(doc)

	if pr, ok := a.playerResponse(doc); ok {
		details := pr.VideoDetails
		page.Title = firstNonEmpty(page.Title, details.Title)
		page.Channel = firstNonEmpty(page.Channel, details.Author, pr.Microformat.PlayerMicroformatRenderer.OwnerChannel)
		// The meta description is truncated; prefer the full text.
		if len(details.ShortDescription) > len(page.Description) {
			page.Description = details.ShortDescription
		}
		if category := pr.Microformat.PlayerMicroformatRenderer.Category; category != "" && !hasRow(page.MetadataRows, "category") {
			page.MetadataRows = append(page.MetadataRows, model.MetadataRow{Title: "Category", Content: category})
		}
	}

	return page, nil
}

func (a *YouTubeAdapter) extractTitle(doc *html.Node) string {
	// The rendered heading of the watch page
	h1 := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && a.HasClass(n, "ytd-watch-metadata")
	})
	if h1 != nil {
		if t := collapseSpace(a.ExtractText(h1)); t != "" {
			return t
		}
	}

	title := firstNonEmpty(a.MetaContent(doc, "og:title"), a.MetaContent(doc, "title"), a.DocumentTitle(doc))
	return titleSuffix.ReplaceAllString(title, "")
}

func (a *YouTubeAdapter) extractChannel(doc *html.Node) string {
	// <span itemprop="author"><link itemprop="name" content="...">
	n := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "link" && a.GetAttribute(n, "itemprop") == "name"
	})
	if n != nil {
		if name := strings.TrimSpace(a.GetAttribute(n, "content")); name != "" {
			return name
		}
	}

	byline := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && a.GetAttribute(n, "id") == "channel-name"
	})
	if byline != nil {
		return collapseSpace(a.ExtractText(byline))
	}
	return ""
}

func (a *YouTubeAdapter) extractRows(doc *html.Node) []model.MetadataRow {
	var rows []model.MetadataRow
	for _, row := range a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ytd-metadata-row-renderer"
	}) {
		title := a.childByID(row, "title")
		content := a.childByID(row, "content")
		if title == "" || content == "" {
			continue
		}
		rows = append(rows, model.MetadataRow{Title: title, Content: content})
	}
	return rows
}

func (a *YouTubeAdapter) childByID(n *html.Node, id string) string {
	child := a.FindFirst(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && a.GetAttribute(c, "id") == id
	})
	if child == nil {
		return ""
	}
	return collapseSpace(a.ExtractText(child))
}

// playerResponse decodes the first JSON object assigned to
// ytInitialPlayerResponse in an inline script
func (a *YouTubeAdapter) playerResponse(doc *html.Node) (playerResponse, bool) {
	var pr playerResponse
	for _, script := range a.FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "script"
	}) {
		if script.FirstChild == nil || script.FirstChild.Type != html.TextNode {
			continue
		}
		body := script.FirstChild.Data
		idx := strings.Index(body, playerResponseMarker)
		if idx < 0 {
			continue
		}
		start := strings.Index(body[idx:], "{")
		if start < 0 {
			continue
		}
		// Decoder stops after the first complete value, ignoring the trailing JS
		dec := json.NewDecoder(strings.NewReader(body[idx+start:]))
		if err := dec.Decode(&pr); err != nil {
			continue
		}
		return pr, true
	}
	return pr, false
}

func hasRow(rows []model.MetadataRow, title string) bool {
	for _, r := range rows {
		if strings.EqualFold(strings.TrimSpace(r.Title), title) {
			return true
		}
	}
	return false
}
