package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdir"
)

// Ensure LoggingDescriber implements artdir.Describer.
var _ artdir.Describer = (*LoggingDescriber)(nil)

// LoggingDescriber wraps a Describer with logging.
type LoggingDescriber struct {
	next   artdir.Describer
	logger *slog.Logger
}

// NewLoggingDescriber creates a new LoggingDescriber.
func NewLoggingDescriber(next artdir.Describer, logger *slog.Logger) *LoggingDescriber {
	return &LoggingDescriber{next: next, logger: logger}
}

// Describe delegates to the wrapped describer and logs the result length.
func (d *LoggingDescriber) Describe(ctx context.Context, loc *artdir.Location) (desc string, err error) {
	defer func(begin time.Time) {
		d.logger.Info("describe",
			"slug", loc.Slug,
			"chars", len([]rune(desc)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Describe(ctx, loc)
}
