// Package repair provides batch maintenance of location records: image
// classification and replacement, completion of missing fields, and
// standardization.
package repair

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/artdir"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of image checks run at once.
const DefaultConcurrency = 10

// Checker classifies appraiser images. Each distinct URL is checked once
// per run, and results are cached in the inventory when one is set.
type Checker struct {
	Images      artdir.ImageChecker
	Inventory   artdir.ImageInventory
	Limiter     artdir.DomainLimiter
	Policy      *artdir.PlaceholderPolicy
	Concurrency int
	MaxAge      time.Duration
	Refresh     bool
	RetryDelays []time.Duration
	Logger      LogFunc

	// Now is used for cache freshness. Defaults to time.Now.
	Now func() time.Time
}

// Verdict is the classification of one appraiser's image.
type Verdict struct {
	Location  *artdir.Location
	Appraiser *artdir.Appraiser
	URL       string
	Class     artdir.ImageClass
	Check     *artdir.ImageCheck // nil for placeholders
	Cached    bool
}

// ProgressEvent reports progress while images are checked.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Valid     bool
	Cached    bool
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressChecked
	ProgressWarning
	ProgressFinished
)

// ProgressFunc is a callback for reporting check progress.
type ProgressFunc func(event ProgressEvent)

type checkResult struct {
	check  *artdir.ImageCheck
	cached bool
}

// Classify returns one verdict per appraiser across locs, in input order.
// Empty URLs are broken, placeholder URLs are not fetched, and everything
// else is checked over the network unless a fresh inventory record exists.
func (c *Checker) Classify(ctx context.Context, locs []*artdir.Location, progress ProgressFunc) ([]*Verdict, error) {
	var verdicts []*Verdict
	pending := make(map[string][]*Verdict)
	var urls []string

	for _, loc := range locs {
		for _, a := range loc.Appraisers {
			v := &Verdict{Location: loc, Appraiser: a, URL: strings.TrimSpace(a.ImageURL)}
			verdicts = append(verdicts, v)

			switch {
			case v.URL == "":
				v.Class = artdir.ImageBroken
				v.Check = &artdir.ImageCheck{Reason: artdir.ReasonMissing}
			case c.Policy != nil && c.Policy.IsPlaceholder(v.URL):
				v.Class = artdir.ImagePlaceholder
			default:
				if _, ok := pending[v.URL]; !ok {
					urls = append(urls, v.URL)
				}
				pending[v.URL] = append(pending[v.URL], v)
			}
		}
	}

	results, err := c.checkURLs(ctx, urls, pending, progress)
	if err != nil {
		return nil, err
	}

	for url, vs := range pending {
		res := results[url]
		for _, v := range vs {
			v.Check = res.check
			v.Cached = res.cached
			if res.check.Valid {
				v.Class = artdir.ImageOK
			} else {
				v.Class = artdir.ImageBroken
			}
		}
	}
	return verdicts, nil
}

func (c *Checker) checkURLs(ctx context.Context, urls []string, pending map[string][]*Verdict, progress ProgressFunc) (map[string]checkResult, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	total := len(urls)

	var mu sync.Mutex
	completed := 0
	report := func(event ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if event.Type == ProgressChecked {
			completed++
		}
		event.Completed = completed
		event.Total = total
		progress(event)
	}

	report(ProgressEvent{Type: ProgressStarted})

	results := make([]checkResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, url := range urls {
		id := pending[url][0].Appraiser.ID
		g.Go(func() error {
			res, err := c.checkOne(gctx, url, id, report)
			if err != nil {
				return err
			}
			results[i] = res
			report(ProgressEvent{Type: ProgressChecked, URL: url, Valid: res.check.Valid, Cached: res.cached})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report(ProgressEvent{Type: ProgressFinished})

	byURL := make(map[string]checkResult, len(urls))
	for i, url := range urls {
		byURL[url] = results[i]
	}
	return byURL, nil
}

// checkOne serves url from the inventory when fresh, otherwise checks it
// and records the result. Inventory failures are reported and skipped.
func (c *Checker) checkOne(ctx context.Context, url, id string, report func(ProgressEvent)) (checkResult, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	var existing *artdir.ImageRecord
	if c.Inventory != nil {
		rec, err := c.Inventory.FindImageByURL(ctx, url)
		switch {
		case err == nil:
			existing = rec
		case ctx.Err() != nil:
			return checkResult{}, ctx.Err()
		case artdir.ErrorCode(err) != artdir.ENOTFOUND:
			report(ProgressEvent{Type: ProgressWarning, URL: url, Error: err})
		}
	}

	if existing != nil && !c.Refresh && existing.Fresh(now(), c.MaxAge) {
		return checkResult{check: recordCheck(existing), cached: true}, nil
	}

	delays := c.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	check, err := CheckWithRetry(ctx, url, c.Images, c.Limiter, c.Logger, delays)
	if err != nil {
		return checkResult{}, err
	}

	if c.Inventory != nil {
		rec := &artdir.ImageRecord{
			URL:       url,
			ID:        id,
			Valid:     check.Valid,
			Status:    check.Status,
			Source:    artdir.SourceCheck,
			CheckedAt: check.CheckedAt,
		}
		// ImageKit listings stay attributed to ImageKit so they remain
		// available as replacements.
		if existing != nil && existing.Source == artdir.SourceImageKit {
			rec.Source = existing.Source
			rec.ID = existing.ID
		}
		if err := c.Inventory.UpsertImage(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return checkResult{}, ctx.Err()
			}
			report(ProgressEvent{Type: ProgressWarning, URL: url, Error: err})
		}
	}

	return checkResult{check: check}, nil
}

func recordCheck(rec *artdir.ImageRecord) *artdir.ImageCheck {
	check := &artdir.ImageCheck{
		URL:       rec.URL,
		Valid:     rec.Valid,
		Status:    rec.Status,
		CheckedAt: rec.CheckedAt,
	}
	if !rec.Valid {
		check.Reason = "cached failure"
	}
	return check
}
