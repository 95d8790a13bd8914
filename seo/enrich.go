package seo

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/goquery"
)

// Enricher writes titles, descriptions, canonical links, Open Graph tags,
// and JSON-LD into location pages from the location records.
type Enricher struct {
	Pages     artdir.PageStore
	Locations artdir.LocationService

	// Describer writes descriptions with a language model. Optional.
	Describer artdir.Describer

	// Extractor pulls a summary from the page's main content. Optional.
	Extractor artdir.Extractor

	SiteURL string
	DryRun  bool
}

// Enrich processes the location pages for every location matching filter.
// Locations without a generated page are reported with ENOTFOUND.
func (e *Enricher) Enrich(ctx context.Context, filter artdir.LocationFilter) ([]*PageResult, error) {
	set, err := e.Locations.FindLocations(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]*PageResult, 0, len(set.Locations))
	for _, loc := range set.Locations {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.enrichLocation(ctx, loc))
	}
	return results, nil
}

func (e *Enricher) enrichLocation(ctx context.Context, loc *artdir.Location) *PageResult {
	res := &PageResult{Path: LocationPagePath(loc.Slug), Slug: loc.Slug}

	page, err := e.Pages.ReadPage(ctx, res.Path)
	if err != nil {
		res.Err = err
		return res
	}

	doc, err := goquery.Parse(page.HTML)
	if err != nil {
		res.Err = err
		return res
	}

	res.Fixes = doc.EnsureStructure()

	base := strings.TrimSuffix(e.SiteURL, "/")
	canonical := base + artdir.LocationPath(loc.Slug)
	title := LocationTitle(loc)
	desc := e.describe(ctx, loc, page, res)

	doc.SetTitle(title)
	doc.SetMetaName("description", desc)
	doc.SetCanonical(canonical)
	doc.SetMetaProperty("og:title", title)
	doc.SetMetaProperty("og:description", desc)
	doc.SetMetaProperty("og:url", canonical)
	doc.SetMetaProperty("og:type", "website")

	if _, err := doc.UpsertJSONLD("ItemList", ItemListSchema(loc, base)); err != nil {
		res.Err = err
		return res
	}
	if _, err := doc.UpsertJSONLD("BreadcrumbList", BreadcrumbSchema(loc, base)); err != nil {
		res.Err = err
		return res
	}

	res.Changed, res.Err = writeIfChanged(ctx, e.Pages, page, doc, e.DryRun)
	return res
}

// describe picks the meta description: the record's own SEO description,
// then the describer, then the page's main content, then a template.
func (e *Enricher) describe(ctx context.Context, loc *artdir.Location, page *artdir.Page, res *PageResult) string {
	if loc.SEO != nil && strings.TrimSpace(loc.SEO.Description) != "" {
		return TruncateDescription(loc.SEO.Description)
	}

	if e.Describer != nil {
		desc, err := e.Describer.Describe(ctx, loc)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("describer: %v", err))
		} else if desc = strings.TrimSpace(desc); desc != "" {
			return TruncateDescription(desc)
		}
	}

	if e.Extractor != nil {
		result, err := e.Extractor.Extract(page.HTML)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("extractor: %v", err))
		} else if desc := summarize(result); desc != "" {
			return TruncateDescription(desc)
		}
	}

	return TemplateDescription(loc)
}

// summarize prefers extracted metadata and falls back to the first
// sentence-sized run of main content text.
func summarize(r *artdir.ExtractResult) string {
	if r == nil {
		return ""
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		return d
	}
	doc, err := goquery.Parse(r.ContentHTML)
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) < 40 {
		return ""
	}
	return text
}
