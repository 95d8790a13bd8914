package etree_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/artdir"
	artetree "github.com/fwojciec/artdir/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readXML(t *testing.T, path string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(path))
	return doc
}

func locsOf(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		out = append(out, el.SelectElement("loc").Text())
	}
	return out
}

func TestSitemapWriter_WriteSitemap(t *testing.T) {
	t.Parallel()

	lastMod := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	routes := []*artdir.Route{
		{Path: "/", Kind: artdir.RouteHome, LastMod: lastMod},
		{Path: "/appraiser/boston-fine-art", Kind: artdir.RouteAppraiser, LastMod: lastMod},
		{Path: "/location/boston", Kind: artdir.RouteLocation, LastMod: lastMod},
	}

	t.Run("writes a single urlset", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := artetree.NewSitemapWriter(dir, "https://example.com/")

		written, err := w.WriteSitemap(context.Background(), routes)

		require.NoError(t, err)
		assert.Equal(t, []string{"sitemap.xml"}, written)

		root := readXML(t, filepath.Join(dir, "sitemap.xml")).Root()
		assert.Equal(t, "urlset", root.Tag)
		assert.Equal(t, artetree.Namespace, root.SelectAttrValue("xmlns", ""))
		assert.Equal(t, []string{
			"https://example.com/",
			"https://example.com/appraiser/boston-fine-art",
			"https://example.com/location/boston",
		}, locsOf(root, "url"))

		home := root.SelectElements("url")[0]
		assert.Equal(t, "2025-03-14", home.SelectElement("lastmod").Text())
		assert.Equal(t, "weekly", home.SelectElement("changefreq").Text())
		assert.Equal(t, "1.0", home.SelectElement("priority").Text())
	})

	t.Run("unchanged sitemap is not rewritten", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := artetree.NewSitemapWriter(dir, "https://example.com")

		_, err := w.WriteSitemap(context.Background(), routes)
		require.NoError(t, err)
		written, err := w.WriteSitemap(context.Background(), routes)

		require.NoError(t, err)
		assert.Empty(t, written)
	})

	t.Run("splits into sitemap index above the per-file limit", func(t *testing.T) {
		t.Parallel()

		var many []*artdir.Route
		for i := range 5 {
			many = append(many, &artdir.Route{Path: fmt.Sprintf("/appraiser/a-%d", i), Kind: artdir.RouteAppraiser, LastMod: lastMod})
		}
		dir := t.TempDir()
		w := artetree.NewSitemapWriter(dir, "https://example.com")
		w.PerFile = 2

		written, err := w.WriteSitemap(context.Background(), many)

		require.NoError(t, err)
		assert.Equal(t, []string{"sitemap-1.xml", "sitemap-2.xml", "sitemap-3.xml", "sitemap.xml"}, written)

		index := readXML(t, filepath.Join(dir, "sitemap.xml")).Root()
		assert.Equal(t, "sitemapindex", index.Tag)
		assert.Equal(t, []string{
			"https://example.com/sitemap-1.xml",
			"https://example.com/sitemap-2.xml",
			"https://example.com/sitemap-3.xml",
		}, locsOf(index, "sitemap"))

		var total []string
		for i := 1; i <= 3; i++ {
			part := readXML(t, filepath.Join(dir, fmt.Sprintf("sitemap-%d.xml", i))).Root()
			total = append(total, locsOf(part, "url")...)
		}
		assert.Len(t, total, 5)

		_, err = os.Stat(filepath.Join(dir, "sitemap-4.xml"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("removes parts left over from a larger route set", func(t *testing.T) {
		t.Parallel()

		var many []*artdir.Route
		for i := range 5 {
			many = append(many, &artdir.Route{Path: fmt.Sprintf("/appraiser/a-%d", i), Kind: artdir.RouteAppraiser, LastMod: lastMod})
		}
		dir := t.TempDir()
		w := artetree.NewSitemapWriter(dir, "https://example.com")
		w.PerFile = 2

		_, err := w.WriteSitemap(context.Background(), many)
		require.NoError(t, err)
		require.FileExists(t, filepath.Join(dir, "sitemap-3.xml"))

		_, err = w.WriteSitemap(context.Background(), many[:3])
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(dir, "sitemap-1.xml"))
		assert.FileExists(t, filepath.Join(dir, "sitemap-2.xml"))
		assert.NoFileExists(t, filepath.Join(dir, "sitemap-3.xml"))
		index := readXML(t, filepath.Join(dir, "sitemap.xml")).Root()
		assert.Len(t, locsOf(index, "sitemap"), 2)

		_, err = w.WriteSitemap(context.Background(), many[:1])
		require.NoError(t, err)

		assert.NoFileExists(t, filepath.Join(dir, "sitemap-1.xml"))
		assert.NoFileExists(t, filepath.Join(dir, "sitemap-2.xml"))
		assert.Equal(t, "urlset", readXML(t, filepath.Join(dir, "sitemap.xml")).Root().Tag)
	})
}
