package artdir

import (
	"context"
	"strings"
	"time"
)

// RouteKind classifies a site route for sitemap weighting.
type RouteKind string

// RouteKind constants.
const (
	RouteHome      RouteKind = "home"
	RouteLocation  RouteKind = "location"
	RouteAppraiser RouteKind = "appraiser"
	RoutePage      RouteKind = "page"
)

// Route is a site path listed in the sitemap.
type Route struct {
	Path    string
	Kind    RouteKind
	LastMod time.Time
}

// Priority returns the sitemap priority for the route kind.
func (r *Route) Priority() float64 {
	switch r.Kind {
	case RouteHome:
		return 1.0
	case RouteLocation:
		return 0.8
	case RouteAppraiser:
		return 0.6
	default:
		return 0.5
	}
}

// ChangeFreq returns the sitemap change frequency for the route kind.
func (r *Route) ChangeFreq() string {
	switch r.Kind {
	case RouteHome, RouteLocation:
		return "weekly"
	default:
		return "monthly"
	}
}

// LocationPath returns the route of a location page.
func LocationPath(slug string) string {
	return "/location/" + slug
}

// AppraiserPath returns the route of an appraiser profile page.
func AppraiserPath(id string) string {
	return "/appraiser/" + id
}

// RouteKindOf classifies a route path.
func RouteKindOf(path string) RouteKind {
	switch {
	case path == "/":
		return RouteHome
	case strings.HasPrefix(path, "/location/"):
		return RouteLocation
	case strings.HasPrefix(path, "/appraiser/"):
		return RouteAppraiser
	default:
		return RoutePage
	}
}

// LocationRoutes derives the location and appraiser routes of loc.
// Appraisers without an id have no profile page and are skipped.
func LocationRoutes(loc *Location, lastMod time.Time) []*Route {
	routes := []*Route{{Path: LocationPath(loc.Slug), Kind: RouteLocation, LastMod: lastMod}}
	for _, a := range loc.Appraisers {
		if a.ID == "" {
			continue
		}
		routes = append(routes, &Route{Path: AppraiserPath(a.ID), Kind: RouteAppraiser, LastMod: lastMod})
	}
	return routes
}

// SitemapService discovers URLs from a deployed site's sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}

// SitemapWriter publishes the site's route list for crawlers.
type SitemapWriter interface {
	// WriteSitemap writes sitemap files for routes and returns the names
	// of the files whose content changed.
	WriteSitemap(ctx context.Context, routes []*Route) ([]string, error)
}
