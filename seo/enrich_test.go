package seo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/goquery"
	"github.com/fwojciec/artdir/mock"
	"github.com/fwojciec/artdir/seo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteURL = "https://art-appraiser-directory.appraisily.com"

func bostonLocation() *artdir.Location {
	return &artdir.Location{
		Slug:  "boston",
		City:  "Boston",
		State: "MA",
		Appraisers: []*artdir.Appraiser{
			{ID: "boston-fine-art", Name: "Boston Fine Art", Rating: 4.8, ReviewCount: 12, Phone: "(617) 555-0100"},
			{ID: "back-bay-antiques", Name: "Back Bay Antiques"},
		},
	}
}

func locationsOf(locs ...*artdir.Location) *mock.LocationService {
	return &mock.LocationService{
		FindLocationsFn: func(_ context.Context, filter artdir.LocationFilter) (*artdir.LocationSet, error) {
			set := &artdir.LocationSet{}
			for _, loc := range locs {
				if filter.Match(loc.Slug) {
					set.Locations = append(set.Locations, loc)
				}
			}
			return set, nil
		},
	}
}

func TestEnricher_Enrich(t *testing.T) {
	t.Parallel()

	t.Run("writes metadata and structured data", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{
			"location/boston/index.html": `<!DOCTYPE html><html><head><title>Vite App</title>` +
				`<script type="application/ld+json">{"@type":"Organization","name":"Appraisily"}</script>` +
				`</head><body></body></html>`,
		}
		e := &seo.Enricher{Pages: memPages(files), Locations: locationsOf(bostonLocation()), SiteURL: siteURL}

		results, err := e.Enrich(context.Background(), artdir.LocationFilter{})

		require.NoError(t, err)
		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.True(t, results[0].Changed)
		assert.Contains(t, results[0].Fixes, `added <div id="root">`)

		doc, err := goquery.Parse(files["location/boston/index.html"])
		require.NoError(t, err)
		assert.Equal(t, "Art Appraisers in Boston, MA | Expert Art Valuation Services", doc.Title())
		assert.Equal(t, siteURL+"/location/boston", doc.Canonical())
		desc, _ := doc.MetaName("description")
		assert.Equal(t, seo.TemplateDescription(bostonLocation()), desc)
		ogURL, _ := doc.MetaProperty("og:url")
		assert.Equal(t, siteURL+"/location/boston", ogURL)

		blocks := doc.JSONLD()
		require.Len(t, blocks, 3)
		assert.True(t, blocks[0].HasType("Organization"), "unrelated block kept")
		assert.True(t, blocks[1].HasType("ItemList"))
		assert.Equal(t, 2, blocks[1].Items)
		assert.True(t, blocks[2].HasType("BreadcrumbList"))
		assert.Contains(t, files["location/boston/index.html"], `<div id="root">`)
	})

	t.Run("second run changes nothing", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{"location/boston/index.html": `<html><head></head><body><div id="root"></div></body></html>`}
		e := &seo.Enricher{Pages: memPages(files), Locations: locationsOf(bostonLocation()), SiteURL: siteURL}

		_, err := e.Enrich(context.Background(), artdir.LocationFilter{})
		require.NoError(t, err)
		results, err := e.Enrich(context.Background(), artdir.LocationFilter{})
		require.NoError(t, err)

		assert.False(t, results[0].Changed)
	})

	t.Run("record description wins over describer", func(t *testing.T) {
		t.Parallel()

		loc := bostonLocation()
		loc.SEO = &artdir.SEO{Description: "Hand-written Boston description."}
		files := map[string]string{"location/boston/index.html": `<html><head></head><body></body></html>`}
		e := &seo.Enricher{
			Pages:     memPages(files),
			Locations: locationsOf(loc),
			Describer: &mock.Describer{DescribeFn: func(context.Context, *artdir.Location) (string, error) {
				t.Fatal("describer should not be called")
				return "", nil
			}},
			SiteURL: siteURL,
		}

		_, err := e.Enrich(context.Background(), artdir.LocationFilter{})
		require.NoError(t, err)

		doc, err := goquery.Parse(files["location/boston/index.html"])
		require.NoError(t, err)
		desc, _ := doc.MetaName("description")
		assert.Equal(t, "Hand-written Boston description.", desc)
	})

	t.Run("falls back to extractor when describer fails", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{"location/boston/index.html": `<html><head></head><body></body></html>`}
		e := &seo.Enricher{
			Pages:     memPages(files),
			Locations: locationsOf(bostonLocation()),
			Describer: &mock.Describer{DescribeFn: func(context.Context, *artdir.Location) (string, error) {
				return "", errors.New("quota exceeded")
			}},
			Extractor: &mock.Extractor{ExtractFn: func(string) (*artdir.ExtractResult, error) {
				return &artdir.ExtractResult{Description: "Boston has a long tradition of art collecting."}, nil
			}},
			SiteURL: siteURL,
		}

		results, err := e.Enrich(context.Background(), artdir.LocationFilter{})
		require.NoError(t, err)

		assert.Len(t, results[0].Warnings, 1)
		doc, err := goquery.Parse(files["location/boston/index.html"])
		require.NoError(t, err)
		desc, _ := doc.MetaName("description")
		assert.Equal(t, "Boston has a long tradition of art collecting.", desc)
	})

	t.Run("reports missing page without stopping", func(t *testing.T) {
		t.Parallel()

		denver := &artdir.Location{Slug: "denver", City: "Denver", State: "CO"}
		files := map[string]string{"location/boston/index.html": `<html><head></head><body></body></html>`}
		e := &seo.Enricher{Pages: memPages(files), Locations: locationsOf(bostonLocation(), denver), SiteURL: siteURL}

		results, err := e.Enrich(context.Background(), artdir.LocationFilter{})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.NoError(t, results[0].Err)
		assert.Equal(t, artdir.ENOTFOUND, artdir.ErrorCode(results[1].Err))
	})
}

func TestTruncateDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short text", seo.TruncateDescription("  short \n text "))

	long := strings.Repeat("appraisal ", 40)
	got := seo.TruncateDescription(long)
	assert.LessOrEqual(t, len([]rune(got)), artdir.MaxDescriptionLength)
	assert.True(t, strings.HasSuffix(got, "appraisal…"))
}
