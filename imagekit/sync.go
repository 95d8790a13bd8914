package imagekit

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/artdir"
)

// SyncResult summarizes an inventory sync.
type SyncResult struct {
	Listed  int
	Stored  int
	Removed int
}

// Sync stores the images currently listed under folder as ImageKit rows
// of the inventory, then removes ImageKit rows whose URL is no longer
// listed. Non-image files are ignored. Stale rows are only removed once
// every listed image is stored, so a failed sync never shrinks the
// inventory.
func (c *Client) Sync(ctx context.Context, inv artdir.ImageInventory, folder string) (*SyncResult, error) {
	files, err := c.ListFiles(ctx, folder)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{Listed: len(files)}

	source := artdir.SourceImageKit
	existing, err := inv.FindImages(ctx, artdir.ImageFilter{Source: &source})
	if err != nil {
		return nil, fmt.Errorf("reading imagekit records: %w", err)
	}

	now := c.now().UTC().Truncate(time.Second)
	listed := make(map[string]bool, len(files))
	for _, f := range files {
		if f.URL == "" || (f.FileType != "" && f.FileType != "image") {
			continue
		}
		rec := &artdir.ImageRecord{
			URL:       f.URL,
			ID:        f.ID(),
			Valid:     true,
			Status:    200,
			Source:    artdir.SourceImageKit,
			CheckedAt: now,
		}
		if err := inv.UpsertImage(ctx, rec); err != nil {
			return res, fmt.Errorf("storing %s: %w", f.URL, err)
		}
		listed[f.URL] = true
		res.Stored++
	}

	for _, rec := range existing {
		if listed[rec.URL] {
			continue
		}
		url := rec.URL
		n, err := inv.DeleteImages(ctx, artdir.ImageFilter{URL: &url, Source: &source})
		if err != nil {
			return res, fmt.Errorf("removing stale %s: %w", url, err)
		}
		res.Removed += n
	}
	return res, nil
}
