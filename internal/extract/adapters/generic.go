package adapters

import (
	"golang.org/x/net/html"

	"github.com/ppiankov/trackmatch/internal/model"
)

// GenericAdapter is the fallback adapter for unknown sites. It reads the
// OpenGraph and standard meta tags most video hosts publish.
type GenericAdapter struct {
	BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// ExtractPage collects fragments from meta tags
func (a *GenericAdapter) ExtractPage(doc *html.Node, url string) (*model.Page, error) {
	page := &model.Page{
		Title:       firstNonEmpty(a.MetaContent(doc, "og:title"), a.MetaContent(doc, "title"), a.DocumentTitle(doc)),
		Description: firstNonEmpty(a.MetaContent(doc, "og:description"), a.MetaContent(doc, "description")),
		Channel:     firstNonEmpty(a.MetaContent(doc, "author"), a.MetaContent(doc, "og:site_name")),
	}
	return page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
