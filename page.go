package artdir

import (
	"context"
	"path"
	"strings"
	"time"
)

// Page is a generated HTML file under the public directory.
type Page struct {
	// Path is slash-separated and relative to the public directory,
	// e.g. "location/boston/index.html".
	Path    string
	HTML    string
	ModTime time.Time

	// Checksum is the content hash of the file as read.
	Checksum string
}

// Route returns the site path served by the page.
// "index.html" maps to "/", "location/boston/index.html" to "/location/boston",
// and "about.html" to "/about".
func (p *Page) Route() string {
	return PathToRoute(p.Path)
}

// Slug returns the last segment of the page's route.
func (p *Page) Slug() string {
	return path.Base(p.Route())
}

// PathToRoute converts a public-dir relative HTML path to its site route.
func PathToRoute(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	switch {
	case rel == "index.html":
		return "/"
	case strings.HasSuffix(rel, "/index.html"):
		return "/" + strings.TrimSuffix(rel, "/index.html")
	default:
		return "/" + strings.TrimSuffix(rel, ".html")
	}
}

// LocationSlug returns the slug of a location page. Only paths of the
// form "location/<slug>/index.html" are location pages; nested pages and
// other files under location/ are not.
func LocationSlug(rel string) (string, bool) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	parts := strings.Split(rel, "/")
	if len(parts) != 3 || parts[0] != "location" || parts[1] == "" || parts[2] != "index.html" {
		return "", false
	}
	return parts[1], true
}

// PageStore reads and writes generated HTML pages.
type PageStore interface {
	// FindPages returns the pages matching the filter, ordered by path.
	FindPages(ctx context.Context, filter PageFilter) ([]*Page, error)

	// ReadPage returns the page at the slash-separated relative path.
	// Returns ENOTFOUND if the file does not exist.
	ReadPage(ctx context.Context, path string) (*Page, error)

	// WritePage replaces the page content. It reports whether the stored
	// bytes changed; identical content is not rewritten.
	WritePage(ctx context.Context, page *Page) (bool, error)
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	// RoutePrefix restricts pages to routes under the prefix, e.g. "/location/".
	RoutePrefix string

	// LocationPages restricts pages to location/<slug>/index.html.
	LocationPages bool

	// Slugs restricts pages to those whose last route segment is listed.
	Slugs []string

	// SkipContent leaves Page.HTML empty. Useful for route listings.
	SkipContent bool
}

// Match reports whether the page passes the filter.
func (f PageFilter) Match(p *Page) bool {
	route := p.Route()
	if f.RoutePrefix != "" && !strings.HasPrefix(route, f.RoutePrefix) {
		return false
	}
	if f.LocationPages {
		if _, ok := LocationSlug(p.Path); !ok {
			return false
		}
	}
	return LocationFilter{Slugs: f.Slugs}.Match(p.Slug())
}
