package repair

import (
	"context"
	"time"

	"github.com/fwojciec/artdir"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays between image check attempts: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// CheckWithRetry checks url, retrying transient failures after each of the
// given delays. The limiter, if set, is consulted before every attempt and
// the logger, if set, is called for each retry.
func CheckWithRetry(ctx context.Context, url string, checker artdir.ImageChecker, limiter artdir.DomainLimiter, logger LogFunc, delays []time.Duration) (*artdir.ImageCheck, error) {
	host := hostOf(url)
	maxAttempts := len(delays) + 1

	var check *artdir.ImageCheck
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx, host); err != nil {
				return nil, err
			}
		}

		var err error
		check, err = checker.CheckImage(ctx, url)
		if err != nil {
			return nil, err
		}
		if !check.Retryable() || attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("  retry %s (attempt %d): %s", url, attempt+2, check.Reason)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return check, nil
}
