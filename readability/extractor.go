// Package readability extracts page summaries with go-readability. It is
// the fallback when trafilatura finds no main content.
package readability

import (
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements artdir.Extractor at compile time.
var _ artdir.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title, excerpt, and content.
func (e *Extractor) Extract(rawHTML string) (*artdir.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, artdir.Errorf(artdir.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &artdir.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
		ContentHTML: article.Content,
	}, nil
}
