package mock

import (
	"context"

	"github.com/fwojciec/artdir"
)

// Compile-time interface verification.
var (
	_ artdir.ImageChecker   = (*ImageChecker)(nil)
	_ artdir.ImageInventory = (*ImageInventory)(nil)
	_ artdir.DomainLimiter  = (*DomainLimiter)(nil)
)

// ImageChecker is a mock implementation of artdir.ImageChecker.
type ImageChecker struct {
	CheckImageFn func(ctx context.Context, url string) (*artdir.ImageCheck, error)
}

func (c *ImageChecker) CheckImage(ctx context.Context, url string) (*artdir.ImageCheck, error) {
	return c.CheckImageFn(ctx, url)
}

// ImageInventory is a mock implementation of artdir.ImageInventory.
type ImageInventory struct {
	FindImageByURLFn func(ctx context.Context, url string) (*artdir.ImageRecord, error)
	FindImagesFn     func(ctx context.Context, filter artdir.ImageFilter) ([]*artdir.ImageRecord, error)
	UpsertImageFn    func(ctx context.Context, rec *artdir.ImageRecord) error
	DeleteImagesFn   func(ctx context.Context, filter artdir.ImageFilter) (int, error)
}

func (s *ImageInventory) FindImageByURL(ctx context.Context, url string) (*artdir.ImageRecord, error) {
	return s.FindImageByURLFn(ctx, url)
}

func (s *ImageInventory) FindImages(ctx context.Context, filter artdir.ImageFilter) ([]*artdir.ImageRecord, error) {
	return s.FindImagesFn(ctx, filter)
}

func (s *ImageInventory) UpsertImage(ctx context.Context, rec *artdir.ImageRecord) error {
	return s.UpsertImageFn(ctx, rec)
}

func (s *ImageInventory) DeleteImages(ctx context.Context, filter artdir.ImageFilter) (int, error) {
	return s.DeleteImagesFn(ctx, filter)
}

// DomainLimiter is a mock implementation of artdir.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
