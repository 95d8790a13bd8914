package seo

import (
	"context"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/goquery"
)

// Indexer sets the robots directive of every location page from the
// indexing rules.
type Indexer struct {
	Pages  artdir.PageStore
	Rules  *artdir.IndexingRules
	DryRun bool
}

// Index processes the location pages matching slugs. Pages that fail to
// parse or write are reported through PageResult.Err and do not stop the run.
func (ix *Indexer) Index(ctx context.Context, slugs []string) ([]*PageResult, error) {
	pages, err := ix.Pages.FindPages(ctx, artdir.PageFilter{LocationPages: true, Slugs: slugs})
	if err != nil {
		return nil, err
	}

	results := make([]*PageResult, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, ix.indexPage(ctx, page))
	}
	return results, nil
}

func (ix *Indexer) indexPage(ctx context.Context, page *artdir.Page) *PageResult {
	res := &PageResult{Path: page.Path, Slug: page.Slug()}

	doc, err := goquery.Parse(page.HTML)
	if err != nil {
		res.Err = err
		return res
	}

	decision := ix.Rules.Decide(res.Slug, doc.JSONLD())
	res.Robots = decision.Robots
	res.Reason = decision.Reason

	if removed := doc.SetRobots(decision.Robots); removed > 0 {
		res.Fixes = append(res.Fixes, "collapsed duplicate robots meta")
	}

	res.Changed, res.Err = writeIfChanged(ctx, ix.Pages, page, doc, ix.DryRun)
	return res
}

// writeIfChanged renders doc and stores it when it differs from page.
// In dry-run mode it only reports whether a write would happen.
func writeIfChanged(ctx context.Context, pages artdir.PageStore, page *artdir.Page, doc *goquery.Document, dryRun bool) (bool, error) {
	out, err := doc.Render()
	if err != nil {
		return false, err
	}
	if out == page.HTML {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	page.HTML = out
	return pages.WritePage(ctx, page)
}
