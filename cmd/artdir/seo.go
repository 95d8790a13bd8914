package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/seo"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	rules, err := deps.Config.IndexingRules()
	if err != nil {
		return err
	}

	ix := &seo.Indexer{Pages: deps.Pages, Rules: rules, DryRun: c.DryRun}
	results, err := ix.Index(deps.Ctx, c.Slugs)
	if err != nil {
		return err
	}

	var indexed, changed, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Robots == artdir.RobotsIndex {
			indexed++
		}
		if res.Changed {
			changed++
		}
		fmt.Fprintf(deps.Stdout, "  %-15s %s (%s)\n", res.Robots, res.Slug, res.Reason)
		printFixes(deps, res)
	}

	fmt.Fprintf(deps.Stdout, "%s %d pages: %d index, %d noindex, %d %s\n",
		verb(c.DryRun, "Checked", "Indexed"), len(results)-failed, indexed, len(results)-failed-indexed,
		changed, verb(c.DryRun, "would change", "changed"))
	return nil
}

// Run executes the enrich command.
func (c *EnrichCmd) Run(deps *Dependencies) error {
	e := &seo.Enricher{
		Pages:     deps.Pages,
		Locations: deps.Locations,
		Extractor: deps.Extractor,
		SiteURL:   deps.Config.SiteURL,
		DryRun:    c.DryRun,
	}
	if c.AI {
		e.Describer = deps.Describer
	}

	results, err := e.Enrich(deps.Ctx, artdir.LocationFilter{Slugs: c.Slugs})
	if err != nil {
		return err
	}

	var changed, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", res.Slug, artdir.ErrorMessage(res.Err))
			continue
		}
		if res.Changed {
			changed++
			fmt.Fprintf(deps.Stdout, "  %s %s\n", verb(c.DryRun, "would update", "updated"), res.Path)
		}
		printFixes(deps, res)
	}

	fmt.Fprintf(deps.Stdout, "Enriched %d pages: %d %s, %d skipped\n",
		len(results)-failed, changed, verb(c.DryRun, "would change", "changed"), failed)
	return nil
}

// Run executes the audit command. It fails when any page has issues.
func (c *AuditCmd) Run(deps *Dependencies) error {
	filter := artdir.PageFilter{Slugs: c.Slugs}
	if !c.All {
		filter.LocationPages = true
	}

	a := &seo.Auditor{Pages: deps.Pages}
	reports, err := a.Audit(deps.Ctx, filter)
	if err != nil {
		return err
	}

	return printReports(deps, reports)
}

// printReports lists every issue and returns an error when there are any.
func printReports(deps *Dependencies, reports []*seo.PageReport) error {
	var n int
	for _, r := range reports {
		if len(r.Issues) == 0 {
			continue
		}
		n++
		fmt.Fprintf(deps.Stdout, "%s\n", r.Path)
		for _, issue := range r.Issues {
			fmt.Fprintf(deps.Stdout, "  - %s\n", issue)
		}
	}
	if n > 0 {
		return artdir.Errorf(artdir.EINVALID, "%d pages have issues", n)
	}
	fmt.Fprintln(deps.Stdout, "No issues found")
	return nil
}

func printFixes(deps *Dependencies, res *seo.PageResult) {
	if len(res.Fixes) > 0 {
		fmt.Fprintf(deps.Stdout, "    fixed: %s\n", strings.Join(res.Fixes, ", "))
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(deps.Stderr, "    warn %s: %s\n", res.Slug, w)
	}
}

func verb(dryRun bool, dry, wet string) string {
	if dryRun {
		return dry
	}
	return wet
}
