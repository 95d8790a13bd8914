package seo_test

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/goquery"
	"github.com/fwojciec/artdir/mock"
	"github.com/fwojciec/artdir/seo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageWithItems returns a location page whose ItemList has n entries.
func pageWithItems(n int, robots ...string) string {
	var elems []string
	for i := range n {
		elems = append(elems, fmt.Sprintf(`{"@type":"ListItem","position":%d}`, i+1))
	}
	var metas strings.Builder
	for _, r := range robots {
		fmt.Fprintf(&metas, `<meta name="robots" content="%s">`, r)
	}
	return `<!DOCTYPE html><html><head>` + metas.String() +
		`<script type="application/ld+json">{"@type":"ItemList","itemListElement":[` + strings.Join(elems, ",") + `]}</script>` +
		`</head><body><div id="root"></div></body></html>`
}

// memPages is a mock PageStore over an in-memory map of path to HTML.
func memPages(files map[string]string) *mock.PageStore {
	return &mock.PageStore{
		FindPagesFn: func(_ context.Context, filter artdir.PageFilter) ([]*artdir.Page, error) {
			var pages []*artdir.Page
			for path, html := range files {
				p := &artdir.Page{Path: path, HTML: html}
				if filter.Match(p) {
					pages = append(pages, p)
				}
			}
			return pages, nil
		},
		ReadPageFn: func(_ context.Context, path string) (*artdir.Page, error) {
			html, ok := files[path]
			if !ok {
				return nil, artdir.Errorf(artdir.ENOTFOUND, "page %q not found", path)
			}
			return &artdir.Page{Path: path, HTML: html}, nil
		},
		WritePageFn: func(_ context.Context, page *artdir.Page) (bool, error) {
			changed := files[page.Path] != page.HTML
			files[page.Path] = page.HTML
			return changed, nil
		},
	}
}

func robotsOf(t *testing.T, html string) []string {
	t.Helper()
	doc, err := goquery.Parse(html)
	require.NoError(t, err)
	return doc.Robots()
}

func TestIndexer_Index(t *testing.T) {
	t.Parallel()

	rules := &artdir.IndexingRules{
		Allow:       []string{"boston", "denver", "test-city"},
		Deny:        []*regexp.Regexp{regexp.MustCompile(`^test-`)},
		SignalTypes: []string{"ItemList"},
		MinItems:    3,
	}

	t.Run("sets exactly one robots meta per rule outcome", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{
			"location/boston/index.html":    pageWithItems(5, "noindex", "noindex, nofollow"),
			"location/denver/index.html":    pageWithItems(1),
			"location/test-city/index.html": pageWithItems(9, "index, follow"),
			"location/austin/index.html":    pageWithItems(9),
		}
		ix := &seo.Indexer{Pages: memPages(files), Rules: rules}

		results, err := ix.Index(context.Background(), nil)

		require.NoError(t, err)
		require.Len(t, results, 4)
		for _, r := range results {
			require.NoError(t, r.Err)
		}

		assert.Equal(t, []string{artdir.RobotsIndex}, robotsOf(t, files["location/boston/index.html"]))
		assert.Equal(t, []string{artdir.RobotsNoIndex}, robotsOf(t, files["location/denver/index.html"]))
		assert.Equal(t, []string{artdir.RobotsNoIndex}, robotsOf(t, files["location/test-city/index.html"]))
		assert.Equal(t, []string{artdir.RobotsNoIndex}, robotsOf(t, files["location/austin/index.html"]))
	})

	t.Run("second run changes nothing", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{"location/boston/index.html": pageWithItems(4, "noindex")}
		ix := &seo.Indexer{Pages: memPages(files), Rules: rules}

		first, err := ix.Index(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, first[0].Changed)

		second, err := ix.Index(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, second[0].Changed)
	})

	t.Run("dry run does not write", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{"location/boston/index.html": pageWithItems(4)}
		store := memPages(files)
		store.WritePageFn = func(context.Context, *artdir.Page) (bool, error) {
			t.Fatal("unexpected write")
			return false, nil
		}
		ix := &seo.Indexer{Pages: store, Rules: rules, DryRun: true}

		results, err := ix.Index(context.Background(), nil)

		require.NoError(t, err)
		assert.True(t, results[0].Changed)
		assert.Equal(t, artdir.RobotsIndex, results[0].Robots)
	})

	t.Run("restricts to requested slugs", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{
			"location/boston/index.html": pageWithItems(4),
			"location/denver/index.html": pageWithItems(4),
		}
		ix := &seo.Indexer{Pages: memPages(files), Rules: rules}

		results, err := ix.Index(context.Background(), []string{"denver"})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "denver", results[0].Slug)
	})

	t.Run("ignores pages nested under a location", func(t *testing.T) {
		t.Parallel()

		nested := `<html><head><title>Reviews</title></head><body></body></html>`
		files := map[string]string{
			"location/boston/index.html":         pageWithItems(4),
			"location/boston/reviews/index.html": nested,
			"location/boston/print.html":         nested,
		}
		ix := &seo.Indexer{Pages: memPages(files), Rules: rules}

		results, err := ix.Index(context.Background(), nil)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "boston", results[0].Slug)
		assert.Equal(t, nested, files["location/boston/reviews/index.html"])
		assert.Equal(t, nested, files["location/boston/print.html"])
	})
}
