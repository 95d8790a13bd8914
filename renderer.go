package artdir

import "context"

// Renderer retrieves the hydrated HTML of a page.
// Implementations use browser automation so client-side rendering runs.
type Renderer interface {
	// Render navigates to the URL, waits for JavaScript to run,
	// and returns the resulting HTML.
	// The context controls timeout and cancellation.
	Render(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Renderer is no longer needed.
	Close() error
}
