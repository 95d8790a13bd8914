package repair

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/artdir"
)

// ImageRepairer replaces broken appraiser images.
type ImageRepairer struct {
	Checker   *Checker
	Inventory artdir.ImageInventory
	Policy    *artdir.PlaceholderPolicy

	// Now stamps the report. Defaults to time.Now.
	Now func() time.Time
}

// ImageReport summarizes one repair run.
type ImageReport struct {
	GeneratedAt  time.Time      `json:"generatedAt"`
	Checked      int            `json:"checked"`
	OK           int            `json:"ok"`
	Broken       int            `json:"broken"`
	Placeholder  int            `json:"placeholder"`
	Replacements []*Replacement `json:"replacements"`
}

// Replacement records one image URL swapped on an appraiser.
type Replacement struct {
	Location    string `json:"location"`
	AppraiserID string `json:"appraiserId"`
	Name        string `json:"name"`
	OldURL      string `json:"oldUrl"`
	NewURL      string `json:"newUrl"`
	Status      int    `json:"status"`
	Reason      string `json:"reason"`
}

// Changed returns the locations that had at least one image replaced,
// in the order they were first touched.
func (r *ImageReport) Changed(locs []*artdir.Location) []*artdir.Location {
	touched := make(map[string]bool, len(r.Replacements))
	for _, rep := range r.Replacements {
		touched[rep.Location] = true
	}
	var changed []*artdir.Location
	for _, loc := range locs {
		if touched[loc.Slug] {
			changed = append(changed, loc)
		}
	}
	return changed
}

// Repair classifies every appraiser image in locs and replaces broken ones
// in place. A broken image is swapped for a valid ImageKit image recorded
// under the same appraiser id, otherwise for the default placeholder. The
// original URL moves to OldImageURL unless that is already set.
//
// Placeholders are never replaced, so a second run over repaired data
// makes no changes.
func (r *ImageRepairer) Repair(ctx context.Context, locs []*artdir.Location, progress ProgressFunc) (*ImageReport, error) {
	verdicts, err := r.Checker.Classify(ctx, locs, progress)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	report := &ImageReport{GeneratedAt: now().UTC(), Replacements: []*Replacement{}}

	for _, v := range verdicts {
		report.Checked++
		switch v.Class {
		case artdir.ImageOK:
			report.OK++
			continue
		case artdir.ImagePlaceholder:
			report.Placeholder++
			continue
		}
		report.Broken++

		newURL, err := r.replacementFor(ctx, v.Appraiser.ID, v.URL)
		if err != nil {
			return nil, err
		}

		rep := &Replacement{
			Location:    v.Location.Slug,
			AppraiserID: v.Appraiser.ID,
			Name:        v.Appraiser.Name,
			OldURL:      v.URL,
			NewURL:      newURL,
		}
		if v.Check != nil {
			rep.Status = v.Check.Status
			rep.Reason = v.Check.Reason
			if rep.Reason == "" && rep.Status != 0 {
				rep.Reason = fmt.Sprintf("HTTP %d", rep.Status)
			}
		}
		report.Replacements = append(report.Replacements, rep)

		if v.Appraiser.OldImageURL == "" && v.URL != "" {
			v.Appraiser.OldImageURL = v.URL
		}
		v.Appraiser.ImageURL = newURL
	}

	return report, nil
}

// replacementFor returns a valid ImageKit image for the appraiser id, or
// the default placeholder when none is recorded.
func (r *ImageRepairer) replacementFor(ctx context.Context, id, current string) (string, error) {
	def := artdir.DefaultPlaceholderURL
	if r.Policy != nil && r.Policy.DefaultURL != "" {
		def = r.Policy.DefaultURL
	}
	if r.Inventory == nil || id == "" {
		return def, nil
	}

	source, valid := artdir.SourceImageKit, true
	recs, err := r.Inventory.FindImages(ctx, artdir.ImageFilter{ID: &id, Source: &source, Valid: &valid})
	if err != nil {
		return "", fmt.Errorf("find replacement for %s: %w", id, err)
	}
	for _, rec := range recs {
		if rec.URL != current {
			return rec.URL, nil
		}
	}
	return def, nil
}
