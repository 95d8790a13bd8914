// Package sitemap derives the site's routes from the generated pages and
// the location records, and publishes them as sitemap, routes, and robots
// files.
package sitemap

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/bloom"
	"github.com/fwojciec/artdir/fs"
)

// Generator builds the route list and writes the crawler files.
type Generator struct {
	Pages     artdir.PageStore
	Locations artdir.LocationService
	Sitemaps  artdir.SitemapWriter

	// PublicDir receives routes.txt and robots.txt.
	PublicDir string
	SiteURL   string
}

// Result summarizes a generation run.
type Result struct {
	Routes  []*artdir.Route
	Written []string
	Skipped []artdir.SkippedFile
}

// Routes returns every route exactly once, sorted by path. Routes come
// from index.html files under the public directory and from the location
// and appraiser records; a route found in both takes the later
// modification time.
func (g *Generator) Routes(ctx context.Context) ([]*artdir.Route, []artdir.SkippedFile, error) {
	var pages []*artdir.Page
	if g.Pages != nil {
		var err error
		pages, err = g.Pages.FindPages(ctx, artdir.PageFilter{SkipContent: true})
		if err != nil && artdir.ErrorCode(err) != artdir.ENOTFOUND {
			return nil, nil, err
		}
	}

	var locs []*artdir.Location
	var skipped []artdir.SkippedFile
	if g.Locations != nil {
		set, err := g.Locations.FindLocations(ctx, artdir.LocationFilter{})
		if err != nil && artdir.ErrorCode(err) != artdir.ENOTFOUND {
			return nil, nil, err
		}
		if set != nil {
			locs, skipped = set.Locations, set.Skipped
		}
	}

	n := uint(len(pages) + 1)
	for _, loc := range locs {
		n += uint(len(loc.Appraisers) + 1)
	}
	set := bloom.NewRouteSet(n)

	for _, p := range pages {
		if p.Path != "index.html" && !strings.HasSuffix(p.Path, "/index.html") {
			continue
		}
		route := p.Route()
		set.Add(&artdir.Route{Path: route, Kind: artdir.RouteKindOf(route), LastMod: p.ModTime})
	}
	for _, loc := range locs {
		for _, r := range artdir.LocationRoutes(loc, loc.ModTime) {
			set.Add(r)
		}
	}
	if set.Len() > 0 && !set.Has("/") {
		set.Add(&artdir.Route{Path: "/", Kind: artdir.RouteHome})
	}

	return set.Routes(), skipped, nil
}

// Generate derives the routes and writes sitemap.xml, routes.txt, and
// robots.txt. Only files whose content changed are listed in Written.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	routes, skipped, err := g.Routes(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Routes: routes, Skipped: skipped}

	written, err := g.Sitemaps.WriteSitemap(ctx, routes)
	if err != nil {
		return nil, err
	}
	res.Written = append(res.Written, written...)

	if changed, err := fs.WriteRoutes(g.PublicDir, routes); err != nil {
		return nil, err
	} else if changed {
		res.Written = append(res.Written, fs.RoutesFile)
	}

	sitemapURL := strings.TrimSuffix(g.SiteURL, "/") + "/sitemap.xml"
	if changed, err := fs.WriteRobots(g.PublicDir, sitemapURL); err != nil {
		return nil, err
	} else if changed {
		res.Written = append(res.Written, fs.RobotsFile)
	}

	return res, nil
}

// Comparison lists the differences between local routes and a deployed sitemap.
type Comparison struct {
	// Missing are local routes the deployed sitemap does not list.
	Missing []string

	// Unknown are deployed paths with no local route.
	Unknown []string

	// Foreign are deployed URLs on another host.
	Foreign []string
}

// InSync reports whether the deployed sitemap matches the local routes.
func (c *Comparison) InSync() bool {
	return len(c.Missing) == 0 && len(c.Unknown) == 0 && len(c.Foreign) == 0
}

// Compare matches deployed sitemap URLs against local routes by path.
// Trailing slashes are ignored.
func Compare(local []*artdir.Route, deployed []string, siteURL string) *Comparison {
	site, _ := url.Parse(siteURL)

	localSet := bloom.NewRouteSet(uint(len(local)))
	for _, r := range local {
		localSet.Add(r)
	}

	c := &Comparison{}
	deployedSet := bloom.NewRouteSet(uint(len(deployed)))
	for _, raw := range deployed {
		u, err := url.Parse(raw)
		if err != nil || (site != nil && site.Host != "" && !strings.EqualFold(u.Host, site.Host)) {
			c.Foreign = append(c.Foreign, raw)
			continue
		}
		path := normalizePath(u.Path)
		if !deployedSet.Add(&artdir.Route{Path: path}) {
			continue
		}
		if !localSet.Has(path) {
			c.Unknown = append(c.Unknown, path)
		}
	}
	for _, r := range local {
		if !deployedSet.Has(normalizePath(r.Path)) {
			c.Missing = append(c.Missing, r.Path)
		}
	}

	sort.Strings(c.Unknown)
	sort.Strings(c.Missing)
	return c
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	return strings.TrimSuffix(p, "/")
}
