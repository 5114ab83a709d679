package adapters

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/trackmatch/internal/model"
)

// Adapter scrapes the raw song fragments from a site's video page. Adapters
// only collect text; they never interpret it.
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// ExtractPage collects the title, description, channel and metadata rows
	ExtractPage(doc *html.Node, url string) (*model.Page, error)
}

// Registry manages domain adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewYouTubeAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL and content type
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	// Try specific adapters first
	for _, adapter := range r.adapters {
		if adapter.CanHandle(url, contentType) {
			return adapter
		}
	}

	// Fall back to generic adapter
	return r.generic
}

// Parse parses htmlContent and runs the matching adapter over it
func (r *Registry) Parse(htmlContent, url, contentType string) (*model.Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}
	page, err := r.FindAdapter(url, contentType).ExtractPage(doc, url)
	if err != nil {
		return nil, err
	}
	page.URL = url
	return page, nil
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// MetaContent returns the content of the first <meta> whose name or property
// equals key
func (b *BaseAdapter) MetaContent(doc *html.Node, key string) string {
	n := b.FindFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return false
		}
		return b.GetAttribute(n, "name") == key || b.GetAttribute(n, "property") == key
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(b.GetAttribute(n, "content"))
}

// DocumentTitle returns the text of the <title> element
func (b *BaseAdapter) DocumentTitle(doc *html.Node) string {
	n := b.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if n == nil {
		return ""
	}
	return collapseSpace(b.ExtractText(n))
}

// ExtractText extracts text content from a node
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(b.ExtractText(c))
		buf.WriteString(" ")
	}
	return strings.TrimSpace(buf.String())
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}

	for _, attr := range n.Attr {
		if attr.Key == "class" {
			classes := strings.Fields(attr.Val)
			for _, class := range classes {
				if class == className {
					return true
				}
			}
		}
	}
	return false
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindAll finds all nodes matching a predicate
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
