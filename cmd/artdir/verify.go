package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/seo"
)

// Run executes the verify command.
func (c *VerifyCmd) Run(deps *Dependencies) error {
	if deps.Renderer == nil {
		return fmt.Errorf("no renderer configured")
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = deps.Config.SiteURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	set, err := deps.Locations.FindLocations(deps.Ctx, artdir.LocationFilter{Slugs: c.Slugs})
	if err != nil {
		return err
	}
	printSkipped(deps, set.Skipped)

	locs := set.Locations
	if c.Limit > 0 && len(locs) > c.Limit {
		locs = locs[:c.Limit]
	}
	urls := make([]string, 0, len(locs))
	for _, loc := range locs {
		urls = append(urls, baseURL+artdir.LocationPath(loc.Slug))
	}
	fmt.Fprintf(deps.Stdout, "  Rendering %d pages\n", len(urls))

	v := &seo.Verifier{Renderer: deps.Renderer, Concurrency: c.Concurrency}
	reports, err := v.Verify(deps.Ctx, urls)
	if err != nil {
		return err
	}

	return printReports(deps, reports)
}
