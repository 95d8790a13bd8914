package fs

import (
	"path/filepath"
	"strings"

	"github.com/fwojciec/artdir"
)

// Crawler-facing files written next to the sitemap.
const (
	RoutesFile = "routes.txt"
	RobotsFile = "robots.txt"
)

// WriteRoutes writes one route path per line to routes.txt in dir.
func WriteRoutes(dir string, routes []*artdir.Route) (bool, error) {
	var b strings.Builder
	for _, r := range routes {
		b.WriteString(r.Path)
		b.WriteByte('\n')
	}
	return WriteFile(filepath.Join(dir, RoutesFile), []byte(b.String()), "")
}

// WriteRobots writes a robots.txt that allows every crawler and points
// at sitemapURL.
func WriteRobots(dir, sitemapURL string) (bool, error) {
	content := "User-agent: *\nAllow: /\n\nSitemap: " + sitemapURL + "\n"
	return WriteFile(filepath.Join(dir, RobotsFile), []byte(content), "")
}
