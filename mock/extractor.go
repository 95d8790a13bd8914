package mock

import (
	"context"

	"github.com/fwojciec/artdir"
)

// Compile-time interface verification.
var (
	_ artdir.Extractor = (*Extractor)(nil)
	_ artdir.Describer = (*Describer)(nil)
	_ artdir.Renderer  = (*Renderer)(nil)
)

// Extractor is a mock implementation of artdir.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*artdir.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*artdir.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Describer is a mock implementation of artdir.Describer.
type Describer struct {
	DescribeFn func(ctx context.Context, loc *artdir.Location) (string, error)
}

func (d *Describer) Describe(ctx context.Context, loc *artdir.Location) (string, error) {
	return d.DescribeFn(ctx, loc)
}

// Renderer is a mock implementation of artdir.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (string, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}
