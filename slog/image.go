package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/artdir"
)

// Ensure LoggingImageChecker implements artdir.ImageChecker.
var _ artdir.ImageChecker = (*LoggingImageChecker)(nil)

// LoggingImageChecker wraps an ImageChecker with logging.
type LoggingImageChecker struct {
	next   artdir.ImageChecker
	logger *slog.Logger
}

// NewLoggingImageChecker creates a new LoggingImageChecker.
func NewLoggingImageChecker(next artdir.ImageChecker, logger *slog.Logger) *LoggingImageChecker {
	return &LoggingImageChecker{next: next, logger: logger}
}

// CheckImage delegates to the wrapped checker and logs the outcome.
func (c *LoggingImageChecker) CheckImage(ctx context.Context, url string) (check *artdir.ImageCheck, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if check != nil {
			attrs = append(attrs, "valid", check.Valid, "status", check.Status)
			if check.Reason != "" {
				attrs = append(attrs, "reason", check.Reason)
			}
		}
		attrs = append(attrs, "err", err)
		c.logger.Info("image check", attrs...)
	}(time.Now())
	return c.next.CheckImage(ctx, url)
}
