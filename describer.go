package artdir

import "context"

// MaxDescriptionLength is the longest meta description the tools emit.
const MaxDescriptionLength = 160

// Describer writes a search-result description for a location page.
type Describer interface {
	Describe(ctx context.Context, loc *Location) (string, error)
}
