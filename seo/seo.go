// Package seo applies indexing rules, metadata, and structured data to the
// generated location pages, and audits pages for missing SEO elements.
package seo

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/artdir"
)

// PageResult is the outcome of processing one page.
type PageResult struct {
	Path    string
	Slug    string
	Robots  string
	Reason  string
	Changed bool

	// Fixes lists structural repairs applied to the page.
	Fixes []string

	// Warnings are non-fatal problems, e.g. a failed description source.
	Warnings []string

	// Err is set when the page could not be processed.
	Err error
}

// LocationPagePath returns the public-dir relative path of a location page.
func LocationPagePath(slug string) string {
	return "location/" + slug + "/index.html"
}

// TruncateDescription shortens s to at most MaxDescriptionLength runes,
// cutting at a word boundary and adding an ellipsis when it cuts.
func TruncateDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= artdir.MaxDescriptionLength {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:artdir.MaxDescriptionLength-1])
	if i := strings.LastIndexByte(cut, ' '); i > artdir.MaxDescriptionLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}
