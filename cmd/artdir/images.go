package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/fs"
	"github.com/fwojciec/artdir/repair"
)

const urlWidth = 60

// Run executes the images check command.
func (c *ImagesCheckCmd) Run(deps *Dependencies) error {
	set, err := deps.Locations.FindLocations(deps.Ctx, artdir.LocationFilter{Slugs: c.Slugs})
	if err != nil {
		return err
	}
	printSkipped(deps, set.Skipped)

	checker, err := newChecker(deps, c.MaxAge, c.Refresh)
	if err != nil {
		return err
	}

	verdicts, err := checker.Classify(deps.Ctx, set.Locations, imageProgress(deps))
	if err != nil {
		return err
	}

	var ok, broken, placeholder, cached int
	for _, v := range verdicts {
		if v.Cached {
			cached++
		}
		switch v.Class {
		case artdir.ImageOK:
			ok++
		case artdir.ImagePlaceholder:
			placeholder++
		case artdir.ImageBroken:
			broken++
			fmt.Fprintf(deps.Stdout, "  broken  %s/%s  %s  %s\n",
				v.Location.Slug, v.Appraiser.ID, formatCheck(v.Check), repair.TruncateURL(v.URL, urlWidth))
		}
	}

	fmt.Fprintf(deps.Stdout, "Checked %d images: %d ok, %d broken, %d placeholder (%d cached)\n",
		len(verdicts), ok, broken, placeholder, cached)
	return nil
}

// Run executes the images fix command.
func (c *ImagesFixCmd) Run(deps *Dependencies) error {
	set, err := deps.Locations.FindLocations(deps.Ctx, artdir.LocationFilter{Slugs: c.Slugs})
	if err != nil {
		return err
	}
	printSkipped(deps, set.Skipped)

	checker, err := newChecker(deps, c.MaxAge, c.Refresh)
	if err != nil {
		return err
	}

	repairer := &repair.ImageRepairer{
		Checker:   checker,
		Inventory: deps.Inventory,
		Policy:    checker.Policy,
		Now:       deps.now,
	}
	report, err := repairer.Repair(deps.Ctx, set.Locations, imageProgress(deps))
	if err != nil {
		return err
	}

	for _, r := range report.Replacements {
		fmt.Fprintf(deps.Stdout, "  replace %s/%s  %s  %s -> %s\n",
			r.Location, r.AppraiserID, repair.FormatStatus(r.Status, r.Reason),
			repair.TruncateURL(r.OldURL, urlWidth), r.NewURL)
	}

	if c.DryRun {
		fmt.Fprintf(deps.Stdout, "Dry run: %d of %d images would be replaced\n", len(report.Replacements), report.Checked)
		return nil
	}

	var saved int
	for _, loc := range report.Changed(set.Locations) {
		changed, err := deps.Locations.SaveLocation(deps.Ctx, loc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  save %s: %s\n", loc.Slug, artdir.ErrorMessage(err))
			continue
		}
		if changed {
			saved++
		}
	}

	reportPath := deps.path(c.Report)
	if _, err := fs.WriteJSON(reportPath, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error writing report: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Replaced %d of %d images in %d locations (report: %s)\n",
		len(report.Replacements), report.Checked, saved, reportPath)
	return nil
}

// newChecker builds an image checker from the configuration. maxAge
// overrides the configured cache age when positive.
func newChecker(deps *Dependencies, maxAge time.Duration, refresh bool) (*repair.Checker, error) {
	policy, err := deps.Config.PlaceholderPolicy()
	if err != nil {
		return nil, err
	}
	if maxAge <= 0 {
		maxAge = deps.Config.Images.MaxAge
	}

	checker := &repair.Checker{
		Images:      deps.Images,
		Inventory:   deps.Inventory,
		Limiter:     deps.Limiter,
		Policy:      policy,
		Concurrency: deps.Config.Images.Concurrency,
		MaxAge:      maxAge,
		Refresh:     refresh,
		Now:         deps.now,
	}
	if deps.Logger != nil {
		checker.Logger = func(format string, args ...any) {
			fmt.Fprintf(deps.Stderr, format+"\n", args...)
		}
	}
	return checker, nil
}

// imageProgress prints the check count and every inventory warning.
func imageProgress(deps *Dependencies) repair.ProgressFunc {
	return func(event repair.ProgressEvent) {
		switch event.Type {
		case repair.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Checking %d image URLs\n", event.Total)
		case repair.ProgressWarning:
			fmt.Fprintf(deps.Stderr, "  warn %s: %v\n", event.URL, event.Error)
		case repair.ProgressChecked, repair.ProgressFinished:
			// Summary printed after the run completes
		}
	}
}

func formatCheck(check *artdir.ImageCheck) string {
	if check == nil {
		return "-"
	}
	return repair.FormatStatus(check.Status, check.Reason)
}
