// Package trafilatura extracts page summaries from generated location pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements artdir.Extractor at compile time.
var _ artdir.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to pull the main content and metadata
// description out of a page. When trafilatura finds no content the
// optional fallback extractor is tried.
type Extractor struct {
	fallback artdir.Extractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback sets the extractor used when trafilatura fails or finds
// nothing usable.
func WithFallback(next artdir.Extractor) Option {
	return func(e *Extractor) { e.fallback = next }
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the title, description, and main content.
func (e *Extractor) Extract(rawHTML string) (*artdir.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, artdir.Errorf(artdir.EINVALID, "empty HTML input")
	}

	res, err := e.extract(rawHTML)
	if e.fallback != nil && (err != nil || res.Description == "" && res.ContentHTML == "") {
		return e.fallback.Extract(rawHTML)
	}
	return res, err
}

func (e *Extractor) extract(rawHTML string) (*artdir.ExtractResult, error) {
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &artdir.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
		ContentHTML: contentHTML,
	}, nil
}
