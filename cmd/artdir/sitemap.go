package main

import (
	"fmt"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/sitemap"
)

func newGenerator(deps *Dependencies) *sitemap.Generator {
	return &sitemap.Generator{
		Pages:     deps.Pages,
		Locations: deps.Locations,
		Sitemaps:  deps.SitemapWriter,
		PublicDir: deps.PublicDir,
		SiteURL:   deps.Config.SiteURL,
	}
}

// Run executes the sitemap generate command.
func (c *SitemapGenerateCmd) Run(deps *Dependencies) error {
	res, err := newGenerator(deps).Generate(deps.Ctx)
	if err != nil {
		return err
	}
	printSkipped(deps, res.Skipped)

	for _, name := range res.Written {
		fmt.Fprintf(deps.Stdout, "  wrote %s\n", name)
	}
	fmt.Fprintf(deps.Stdout, "Sitemap lists %d routes (%d files changed)\n", len(res.Routes), len(res.Written))
	return nil
}

// Run executes the sitemap check command. It fails when the deployed
// sitemap differs from the local routes.
func (c *SitemapCheckCmd) Run(deps *Dependencies) error {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = deps.Config.SiteURL
	}

	routes, skipped, err := newGenerator(deps).Routes(deps.Ctx)
	if err != nil {
		return err
	}
	printSkipped(deps, skipped)

	deployed, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, baseURL)
	if err != nil {
		return err
	}

	cmp := sitemap.Compare(routes, deployed, baseURL)
	for _, p := range cmp.Missing {
		fmt.Fprintf(deps.Stdout, "  missing  %s\n", p)
	}
	for _, p := range cmp.Unknown {
		fmt.Fprintf(deps.Stdout, "  unknown  %s\n", p)
	}
	for _, u := range cmp.Foreign {
		fmt.Fprintf(deps.Stdout, "  foreign  %s\n", u)
	}

	fmt.Fprintf(deps.Stdout, "Local routes: %d, deployed URLs: %d\n", len(routes), len(deployed))
	if !cmp.InSync() {
		return artdir.Errorf(artdir.ECONFLICT, "deployed sitemap is out of date: %d missing, %d unknown, %d foreign",
			len(cmp.Missing), len(cmp.Unknown), len(cmp.Foreign))
	}
	fmt.Fprintln(deps.Stdout, "Deployed sitemap is in sync")
	return nil
}
