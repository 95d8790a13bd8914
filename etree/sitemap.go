// Package etree writes XML sitemaps.
package etree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/fs"
)

// Sitemap protocol constants.
const (
	Namespace         = "http://www.sitemaps.org/schemas/sitemap/0.9"
	MaxURLsPerSitemap = 50000
	IndexFile         = "sitemap.xml"
)

var _ artdir.SitemapWriter = (*SitemapWriter)(nil)

// SitemapWriter writes sitemap.xml into a public directory. Route sets
// larger than MaxURLsPerSitemap are split into sitemap-N.xml files listed
// by a sitemap index in sitemap.xml.
type SitemapWriter struct {
	dir     string
	siteURL string

	// PerFile overrides MaxURLsPerSitemap. Zero means the protocol limit.
	PerFile int
}

// NewSitemapWriter creates a writer for dir whose <loc> entries are
// absolute URLs under siteURL.
func NewSitemapWriter(dir, siteURL string) *SitemapWriter {
	return &SitemapWriter{dir: dir, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// WriteSitemap writes the routes in the order given. Files whose content
// is unchanged are not rewritten. sitemap-N.xml parts left over from an
// earlier, larger route set are removed.
func (w *SitemapWriter) WriteSitemap(ctx context.Context, routes []*artdir.Route) ([]string, error) {
	perFile := w.PerFile
	if perFile <= 0 || perFile > MaxURLsPerSitemap {
		perFile = MaxURLsPerSitemap
	}

	if len(routes) <= perFile {
		changed, err := w.write(IndexFile, w.urlset(routes))
		if err != nil {
			return nil, err
		}
		if err := w.removeStaleParts(nil); err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}
		return []string{IndexFile}, nil
	}

	var written []string
	parts := make(map[string]bool)
	index := newDocument("sitemapindex")
	for i := 0; i*perFile < len(routes); i++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		chunk := routes[i*perFile : min((i+1)*perFile, len(routes))]
		name := fmt.Sprintf("sitemap-%d.xml", i+1)
		parts[name] = true

		changed, err := w.write(name, w.urlset(chunk))
		if err != nil {
			return written, err
		}
		if changed {
			written = append(written, name)
		}

		sm := index.Root().CreateElement("sitemap")
		sm.CreateElement("loc").SetText(w.siteURL + "/" + name)
		if last := latest(chunk); !last.IsZero() {
			sm.CreateElement("lastmod").SetText(last.UTC().Format(time.DateOnly))
		}
	}

	changed, err := w.write(IndexFile, index)
	if err != nil {
		return written, err
	}
	if changed {
		written = append(written, IndexFile)
	}
	return written, w.removeStaleParts(parts)
}

// removeStaleParts deletes sitemap-*.xml files in the directory that are
// not in keep.
func (w *SitemapWriter) removeStaleParts(keep map[string]bool) error {
	matches, err := filepath.Glob(filepath.Join(w.dir, "sitemap-*.xml"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if keep[filepath.Base(path)] {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (w *SitemapWriter) urlset(routes []*artdir.Route) *etree.Document {
	doc := newDocument("urlset")
	root := doc.Root()
	for _, r := range routes {
		u := root.CreateElement("url")
		u.CreateElement("loc").SetText(w.siteURL + r.Path)
		if !r.LastMod.IsZero() {
			u.CreateElement("lastmod").SetText(r.LastMod.UTC().Format(time.DateOnly))
		}
		u.CreateElement("changefreq").SetText(r.ChangeFreq())
		u.CreateElement("priority").SetText(fmt.Sprintf("%.1f", r.Priority()))
	}
	return doc
}

func (w *SitemapWriter) write(name string, doc *etree.Document) (bool, error) {
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", name, err)
	}
	return fs.WriteFile(filepath.Join(w.dir, name), data, "")
}

func newDocument(rootTag string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns", Namespace)
	return doc
}

func latest(routes []*artdir.Route) time.Time {
	var t time.Time
	for _, r := range routes {
		if r.LastMod.After(t) {
			t = r.LastMod
		}
	}
	return t
}
