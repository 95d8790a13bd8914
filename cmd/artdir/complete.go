package main

import (
	"fmt"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/repair"
)

// Run executes the complete command.
func (c *CompleteCmd) Run(deps *Dependencies) error {
	set, err := deps.Locations.FindLocations(deps.Ctx, artdir.LocationFilter{Slugs: c.Slugs})
	if err != nil {
		return err
	}
	printSkipped(deps, set.Skipped)

	completer := &repair.Completer{
		Defaults: deps.Config.Completion,
		SiteURL:  deps.Config.SiteURL,
	}

	var fields, touched, saved int
	for _, loc := range set.Locations {
		n := completer.Complete(loc)
		if n == 0 {
			continue
		}
		fields += n
		touched++
		fmt.Fprintf(deps.Stdout, "  %s: filled %d fields\n", loc.Slug, n)

		if c.DryRun {
			continue
		}
		changed, err := deps.Locations.SaveLocation(deps.Ctx, loc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  save %s: %s\n", loc.Slug, artdir.ErrorMessage(err))
			continue
		}
		if changed {
			saved++
		}
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "Dry run: would fill %d fields in %d locations\n", fields, touched)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Filled %d fields, saved %d of %d locations\n", fields, saved, len(set.Locations))
	return nil
}
