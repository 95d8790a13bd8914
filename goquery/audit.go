package goquery

import (
	"fmt"

	"github.com/fwojciec/artdir"
)

// Audit returns the SEO problems found on the page: missing title,
// description, canonical, or robots directive, a malformed robots
// directive, and missing or invalid JSON-LD.
func (d *Document) Audit() []string {
	var issues []string

	if d.Title() == "" {
		issues = append(issues, "missing title")
	}
	if desc, _ := d.MetaName("description"); desc == "" {
		issues = append(issues, "missing meta description")
	}
	if d.Canonical() == "" {
		issues = append(issues, "missing canonical link")
	}

	robots := d.Robots()
	switch {
	case len(robots) == 0:
		issues = append(issues, "missing robots meta")
	case len(robots) > 1:
		issues = append(issues, fmt.Sprintf("%d robots metas", len(robots)))
	case robots[0] != artdir.RobotsIndex && robots[0] != artdir.RobotsNoIndex:
		issues = append(issues, fmt.Sprintf("unexpected robots content %q", robots[0]))
	}

	blocks := d.JSONLD()
	if len(blocks) == 0 {
		issues = append(issues, "missing JSON-LD")
	}
	for i, b := range blocks {
		if b.Err != nil {
			issues = append(issues, fmt.Sprintf("invalid JSON-LD block %d", i+1))
		}
	}

	return issues
}
