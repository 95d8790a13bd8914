package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdir"
)

// Ensure LoggingLocationService implements artdir.LocationService.
var _ artdir.LocationService = (*LoggingLocationService)(nil)

// LoggingLocationService wraps a LocationService with logging.
type LoggingLocationService struct {
	next   artdir.LocationService
	logger *slog.Logger
}

// NewLoggingLocationService creates a new LoggingLocationService.
func NewLoggingLocationService(next artdir.LocationService, logger *slog.Logger) *LoggingLocationService {
	return &LoggingLocationService{next: next, logger: logger}
}

// FindLocations logs the number of locations loaded and any skipped files.
func (s *LoggingLocationService) FindLocations(ctx context.Context, filter artdir.LocationFilter) (set *artdir.LocationSet, err error) {
	defer func(begin time.Time) {
		var n, skipped int
		if set != nil {
			n, skipped = len(set.Locations), len(set.Skipped)
			for _, sf := range set.Skipped {
				s.logger.Warn("skipped location file", "path", sf.Path, "err", sf.Err)
			}
		}
		s.logger.Info("find locations",
			"filter", len(filter.Slugs),
			"count", n,
			"skipped", skipped,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLocations(ctx, filter)
}

// FindLocationBySlug delegates to the wrapped service.
func (s *LoggingLocationService) FindLocationBySlug(ctx context.Context, slug string) (loc *artdir.Location, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find location",
			"slug", slug,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLocationBySlug(ctx, slug)
}

// SaveLocation logs whether the stored record changed.
func (s *LoggingLocationService) SaveLocation(ctx context.Context, loc *artdir.Location) (changed bool, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save location",
			"slug", loc.Slug,
			"changed", changed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveLocation(ctx, loc)
}
