package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/fs"
	"github.com/fwojciec/artdir/repair"
)

// Output locations under the data directory.
const (
	standardizedDir = "standardized"
	citiesFile      = "cities.json"
)

// Run executes the standardize command. Source records are left untouched;
// normalized copies go to the standardized directory.
func (c *StandardizeCmd) Run(deps *Dependencies) error {
	set, err := deps.Locations.FindLocations(deps.Ctx, artdir.LocationFilter{})
	if err != nil {
		return err
	}
	printSkipped(deps, set.Skipped)

	var written int
	for _, loc := range set.Locations {
		repair.Standardize(loc)
		if c.DryRun {
			continue
		}

		path := filepath.Join(deps.DataDir, standardizedDir, loc.Slug+".json")
		changed, err := fs.WriteJSON(path, loc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  write %s: %v\n", loc.Slug, err)
			continue
		}
		if changed {
			written++
		}
	}

	cities := repair.BuildCityIndex(set.Locations)
	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "Dry run: %d locations, %d cities\n", len(set.Locations), len(cities))
		return nil
	}

	if _, err := fs.WriteJSON(filepath.Join(deps.DataDir, citiesFile), cities); err != nil {
		fmt.Fprintf(deps.Stderr, "error writing city index: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Standardized %d locations (%d written), %d cities\n", len(set.Locations), written, len(cities))
	return nil
}
