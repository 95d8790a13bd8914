package repair_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/mock"
	"github.com/fwojciec/artdir/repair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholderURL = artdir.DefaultPlaceholderURL

// newInventory returns a mock inventory backed by a map.
func newInventory(records ...*artdir.ImageRecord) (*mock.ImageInventory, map[string]*artdir.ImageRecord) {
	var mu sync.Mutex
	byURL := make(map[string]*artdir.ImageRecord)
	for _, rec := range records {
		byURL[rec.URL] = rec
	}
	inv := &mock.ImageInventory{
		FindImageByURLFn: func(_ context.Context, url string) (*artdir.ImageRecord, error) {
			mu.Lock()
			defer mu.Unlock()
			rec, ok := byURL[url]
			if !ok {
				return nil, artdir.Errorf(artdir.ENOTFOUND, "image not found")
			}
			return rec, nil
		},
		FindImagesFn: func(_ context.Context, filter artdir.ImageFilter) ([]*artdir.ImageRecord, error) {
			mu.Lock()
			defer mu.Unlock()
			var out []*artdir.ImageRecord
			for _, rec := range byURL {
				if filter.ID != nil && rec.ID != *filter.ID {
					continue
				}
				if filter.Source != nil && rec.Source != *filter.Source {
					continue
				}
				if filter.Valid != nil && rec.Valid != *filter.Valid {
					continue
				}
				out = append(out, rec)
			}
			return out, nil
		},
		UpsertImageFn: func(_ context.Context, rec *artdir.ImageRecord) error {
			mu.Lock()
			defer mu.Unlock()
			byURL[rec.URL] = rec
			return nil
		},
	}
	return inv, byURL
}

// statusChecker answers every URL with the mapped status; unknown URLs are 200.
func statusChecker(statuses map[string]int, calls *atomic.Int32) *mock.ImageChecker {
	return &mock.ImageChecker{
		CheckImageFn: func(_ context.Context, url string) (*artdir.ImageCheck, error) {
			if calls != nil {
				calls.Add(1)
			}
			status, ok := statuses[url]
			if !ok {
				status = 200
			}
			return &artdir.ImageCheck{
				URL:       url,
				Valid:     status >= 200 && status < 300,
				Status:    status,
				CheckedAt: time.Now(),
			}, nil
		},
	}
}

func newRepairer(checker artdir.ImageChecker, inv artdir.ImageInventory) *repair.ImageRepairer {
	policy := &artdir.PlaceholderPolicy{DefaultURL: placeholderURL, Patterns: artdir.DefaultPlaceholderPatterns()}
	return &repair.ImageRepairer{
		Checker: &repair.Checker{
			Images:      checker,
			Inventory:   inv,
			Policy:      policy,
			Concurrency: 4,
			MaxAge:      time.Hour,
			RetryDelays: []time.Duration{0, 0},
		},
		Inventory: inv,
		Policy:    policy,
	}
}

func TestImageRepairer_Repair(t *testing.T) {
	t.Parallel()

	t.Run("replaces 404 image with default placeholder and keeps original", func(t *testing.T) {
		t.Parallel()

		loc := &artdir.Location{Slug: "boston", City: "Boston", Appraisers: []*artdir.Appraiser{
			{ID: "boston-fine-art", Name: "Boston Fine Art", ImageURL: "https://img.example.com/gone.jpg"},
		}}
		r := newRepairer(statusChecker(map[string]int{"https://img.example.com/gone.jpg": 404}, nil), nil)

		report, err := r.Repair(context.Background(), []*artdir.Location{loc}, nil)

		require.NoError(t, err)
		a := loc.Appraisers[0]
		assert.Equal(t, placeholderURL, a.ImageURL)
		assert.Equal(t, "https://img.example.com/gone.jpg", a.OldImageURL)
		require.Len(t, report.Replacements, 1)
		assert.Equal(t, &repair.Replacement{
			Location:    "boston",
			AppraiserID: "boston-fine-art",
			Name:        "Boston Fine Art",
			OldURL:      "https://img.example.com/gone.jpg",
			NewURL:      placeholderURL,
			Status:      404,
			Reason:      "HTTP 404",
		}, report.Replacements[0])
		assert.Equal(t, 1, report.Broken)
	})

	t.Run("prefers valid imagekit image for the same appraiser", func(t *testing.T) {
		t.Parallel()

		inv, _ := newInventory(&artdir.ImageRecord{
			URL:    "https://ik.imagekit.io/appraisily/denver-gallery.jpg",
			ID:     "denver-gallery",
			Valid:  true,
			Source: artdir.SourceImageKit,
		})
		loc := &artdir.Location{Slug: "denver", City: "Denver", Appraisers: []*artdir.Appraiser{
			{ID: "denver-gallery", ImageURL: "https://img.example.com/broken.jpg"},
		}}
		r := newRepairer(statusChecker(map[string]int{"https://img.example.com/broken.jpg": 410}, nil), inv)

		_, err := r.Repair(context.Background(), []*artdir.Location{loc}, nil)

		require.NoError(t, err)
		assert.Equal(t, "https://ik.imagekit.io/appraisily/denver-gallery.jpg", loc.Appraisers[0].ImageURL)
	})

	t.Run("missing URL is broken without old image", func(t *testing.T) {
		t.Parallel()

		loc := &artdir.Location{Slug: "austin", City: "Austin", Appraisers: []*artdir.Appraiser{{ID: "a", ImageURL: ""}}}
		var calls atomic.Int32
		r := newRepairer(statusChecker(nil, &calls), nil)

		report, err := r.Repair(context.Background(), []*artdir.Location{loc}, nil)

		require.NoError(t, err)
		assert.Equal(t, placeholderURL, loc.Appraisers[0].ImageURL)
		assert.Empty(t, loc.Appraisers[0].OldImageURL)
		assert.Equal(t, artdir.ReasonMissing, report.Replacements[0].Reason)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("does not overwrite existing old image URL", func(t *testing.T) {
		t.Parallel()

		loc := &artdir.Location{Slug: "miami", City: "Miami", Appraisers: []*artdir.Appraiser{
			{ID: "m", ImageURL: "https://img.example.com/second.jpg", OldImageURL: "https://img.example.com/first.jpg"},
		}}
		r := newRepairer(statusChecker(map[string]int{"https://img.example.com/second.jpg": 404}, nil), nil)

		_, err := r.Repair(context.Background(), []*artdir.Location{loc}, nil)

		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/first.jpg", loc.Appraisers[0].OldImageURL)
	})

	t.Run("placeholders are not fetched or replaced", func(t *testing.T) {
		t.Parallel()

		loc := &artdir.Location{Slug: "reno", City: "Reno", Appraisers: []*artdir.Appraiser{
			{ID: "a", ImageURL: "https://placehold.co/400x400"},
			{ID: "b", ImageURL: placeholderURL},
		}}
		var calls atomic.Int32
		r := newRepairer(statusChecker(nil, &calls), nil)

		report, err := r.Repair(context.Background(), []*artdir.Location{loc}, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Placeholder)
		assert.Empty(t, report.Replacements)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("second run over repaired data changes nothing", func(t *testing.T) {
		t.Parallel()

		loc := &artdir.Location{Slug: "boston", City: "Boston", Appraisers: []*artdir.Appraiser{
			{ID: "a", ImageURL: "https://img.example.com/gone.jpg"},
			{ID: "b", ImageURL: "https://img.example.com/fine.jpg"},
			{ID: "c", ImageURL: ""},
		}}
		checker := statusChecker(map[string]int{"https://img.example.com/gone.jpg": 404}, nil)

		_, err := newRepairer(checker, nil).Repair(context.Background(), []*artdir.Location{loc}, nil)
		require.NoError(t, err)
		first, err := json.Marshal(loc)
		require.NoError(t, err)

		report, err := newRepairer(checker, nil).Repair(context.Background(), []*artdir.Location{loc}, nil)
		require.NoError(t, err)
		second, err := json.Marshal(loc)
		require.NoError(t, err)

		assert.Empty(t, report.Replacements)
		assert.JSONEq(t, string(first), string(second))
		assert.Empty(t, report.Changed([]*artdir.Location{loc}))
	})

	t.Run("returns error when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		checker := &mock.ImageChecker{
			CheckImageFn: func(ctx context.Context, _ string) (*artdir.ImageCheck, error) {
				return nil, ctx.Err()
			},
		}
		loc := &artdir.Location{Slug: "x", City: "X", Appraisers: []*artdir.Appraiser{{ID: "a", ImageURL: "https://img.example.com/a.jpg"}}}

		_, err := newRepairer(checker, nil).Repair(ctx, []*artdir.Location{loc}, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestChecker_Classify(t *testing.T) {
	t.Parallel()

	t.Run("checks each distinct URL once", func(t *testing.T) {
		t.Parallel()

		shared := "https://img.example.com/shared.jpg"
		locs := []*artdir.Location{
			{Slug: "a", Appraisers: []*artdir.Appraiser{{ID: "1", ImageURL: shared}, {ID: "2", ImageURL: shared}}},
			{Slug: "b", Appraisers: []*artdir.Appraiser{{ID: "3", ImageURL: shared}}},
		}
		var calls atomic.Int32
		c := &repair.Checker{Images: statusChecker(nil, &calls), RetryDelays: []time.Duration{}}

		verdicts, err := c.Classify(context.Background(), locs, nil)

		require.NoError(t, err)
		require.Len(t, verdicts, 3)
		for _, v := range verdicts {
			assert.Equal(t, artdir.ImageOK, v.Class)
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("reuses fresh inventory records", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		inv, _ := newInventory(&artdir.ImageRecord{
			URL: "https://img.example.com/a.jpg", ID: "1", Valid: false, Status: 404,
			Source: artdir.SourceCheck, CheckedAt: now.Add(-time.Hour),
		})
		var calls atomic.Int32
		c := &repair.Checker{
			Images:    statusChecker(nil, &calls),
			Inventory: inv,
			MaxAge:    24 * time.Hour,
			Now:       func() time.Time { return now },
		}
		locs := []*artdir.Location{{Slug: "a", Appraisers: []*artdir.Appraiser{{ID: "1", ImageURL: "https://img.example.com/a.jpg"}}}}

		verdicts, err := c.Classify(context.Background(), locs, nil)

		require.NoError(t, err)
		assert.Equal(t, artdir.ImageBroken, verdicts[0].Class)
		assert.True(t, verdicts[0].Cached)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("refresh ignores cache and records results", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		inv, byURL := newInventory(&artdir.ImageRecord{
			URL: "https://ik.imagekit.io/a.jpg", ID: "ik-1", Valid: true, Status: 200,
			Source: artdir.SourceImageKit, CheckedAt: now,
		})
		var calls atomic.Int32
		c := &repair.Checker{
			Images:      statusChecker(map[string]int{"https://ik.imagekit.io/a.jpg": 404}, &calls),
			Inventory:   inv,
			MaxAge:      24 * time.Hour,
			Refresh:     true,
			RetryDelays: []time.Duration{},
			Now:         func() time.Time { return now },
		}
		locs := []*artdir.Location{{Slug: "a", Appraisers: []*artdir.Appraiser{{ID: "1", ImageURL: "https://ik.imagekit.io/a.jpg"}}}}

		verdicts, err := c.Classify(context.Background(), locs, nil)

		require.NoError(t, err)
		assert.Equal(t, artdir.ImageBroken, verdicts[0].Class)
		assert.Equal(t, int32(1), calls.Load())
		rec := byURL["https://ik.imagekit.io/a.jpg"]
		assert.False(t, rec.Valid)
		assert.Equal(t, artdir.SourceImageKit, rec.Source, "imagekit attribution is kept")
		assert.Equal(t, "ik-1", rec.ID)
	})

	t.Run("reports progress for every checked URL", func(t *testing.T) {
		t.Parallel()

		locs := []*artdir.Location{{Slug: "a", Appraisers: []*artdir.Appraiser{
			{ID: "1", ImageURL: "https://img.example.com/1.jpg"},
			{ID: "2", ImageURL: "https://img.example.com/2.jpg"},
		}}}
		c := &repair.Checker{Images: statusChecker(nil, nil), RetryDelays: []time.Duration{}}

		var events []repair.ProgressEvent
		_, err := c.Classify(context.Background(), locs, func(e repair.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, repair.ProgressStarted, events[0].Type)
		assert.Equal(t, repair.ProgressFinished, events[3].Type)
		assert.Equal(t, 2, events[3].Completed)
		assert.Equal(t, 2, events[3].Total)
	})
}
