package seo

import (
	"context"
	"fmt"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/goquery"
	"golang.org/x/sync/errgroup"
)

// PageReport lists the SEO issues found on one page.
type PageReport struct {
	Path   string   `json:"path"`
	Issues []string `json:"issues"`
}

// Auditor reports missing SEO elements without modifying pages.
type Auditor struct {
	Pages artdir.PageStore
}

// Audit inspects the pages matching filter and returns a report for every
// page with at least one issue.
func (a *Auditor) Audit(ctx context.Context, filter artdir.PageFilter) ([]*PageReport, error) {
	pages, err := a.Pages.FindPages(ctx, filter)
	if err != nil {
		return nil, err
	}

	var reports []*PageReport
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues := AuditHTML(page.HTML, false)
		if len(issues) > 0 {
			reports = append(reports, &PageReport{Path: page.Path, Issues: issues})
		}
	}
	return reports, nil
}

// AuditHTML returns the issues found in one HTML document. With rendered
// set, an empty mount point is reported as a hydration failure.
func AuditHTML(html string, rendered bool) []string {
	doc, err := goquery.Parse(html)
	if err != nil {
		return []string{err.Error()}
	}
	issues := doc.Audit()
	if rendered && doc.RootEmpty() {
		issues = append(issues, "empty root element")
	}
	return issues
}

// DefaultVerifyConcurrency is the number of pages rendered at once.
const DefaultVerifyConcurrency = 4

// Verifier renders deployed pages in a browser and audits the hydrated DOM.
type Verifier struct {
	Renderer    artdir.Renderer
	Concurrency int
}

// Verify renders every URL and returns one report per URL, in input order.
// Render failures are recorded as issues.
func (v *Verifier) Verify(ctx context.Context, urls []string) ([]*PageReport, error) {
	concurrency := v.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultVerifyConcurrency
	}

	reports := make([]*PageReport, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, url := range urls {
		g.Go(func() error {
			report := &PageReport{Path: url}
			html, err := v.Renderer.Render(gctx, url)
			switch {
			case gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				report.Issues = []string{fmt.Sprintf("render failed: %v", err)}
			default:
				report.Issues = AuditHTML(html, true)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
