package mock

import (
	"context"

	"github.com/fwojciec/artdir"
)

var _ artdir.LocationService = (*LocationService)(nil)

// LocationService is a mock implementation of artdir.LocationService.
type LocationService struct {
	FindLocationsFn      func(ctx context.Context, filter artdir.LocationFilter) (*artdir.LocationSet, error)
	FindLocationBySlugFn func(ctx context.Context, slug string) (*artdir.Location, error)
	SaveLocationFn       func(ctx context.Context, loc *artdir.Location) (bool, error)
}

func (s *LocationService) FindLocations(ctx context.Context, filter artdir.LocationFilter) (*artdir.LocationSet, error) {
	return s.FindLocationsFn(ctx, filter)
}

func (s *LocationService) FindLocationBySlug(ctx context.Context, slug string) (*artdir.Location, error) {
	return s.FindLocationBySlugFn(ctx, slug)
}

func (s *LocationService) SaveLocation(ctx context.Context, loc *artdir.Location) (bool, error) {
	return s.SaveLocationFn(ctx, loc)
}
