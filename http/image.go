// Package http provides HTTP implementations of artdir services: image
// liveness checks and discovery of a deployed site's sitemap.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/artdir"
)

// DefaultTimeout is the default timeout for a single image request.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent identifies the checker to image hosts.
const DefaultUserAgent = "artdir-imagecheck/1.0"

// Ensure ImageChecker implements artdir.ImageChecker at compile time.
var _ artdir.ImageChecker = (*ImageChecker)(nil)

// ImageChecker checks image URLs with HEAD requests, falling back to a
// one-byte ranged GET for hosts that refuse HEAD.
type ImageChecker struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	now       func() time.Time
}

// Option configures an ImageChecker.
type Option func(*ImageChecker)

// WithTimeout sets the timeout for each request.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *ImageChecker) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent to image hosts.
func WithUserAgent(ua string) Option {
	return func(c *ImageChecker) {
		c.userAgent = ua
	}
}

// NewImageChecker creates a new ImageChecker.
func NewImageChecker(opts ...Option) *ImageChecker {
	c := &ImageChecker{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// CheckImage reports whether rawURL serves an image.
func (c *ImageChecker) CheckImage(ctx context.Context, rawURL string) (*artdir.ImageCheck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	check := &artdir.ImageCheck{URL: rawURL, CheckedAt: c.now().UTC()}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		check.Reason = artdir.ReasonMalformedURL
		return check, nil
	}

	resp, err := c.do(ctx, http.MethodHead, u.String())
	if err == nil && refusesHead(resp.StatusCode) {
		resp, err = c.do(ctx, http.MethodGet, u.String())
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		check.Reason = err.Error()
		return check, nil
	}

	check.Status = resp.StatusCode
	check.ContentType = resp.Header.Get("Content-Type")

	switch {
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		check.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
	case !isImageType(check.ContentType):
		check.Reason = artdir.ReasonNotImage
	default:
		check.Valid = true
	}
	return check, nil
}

// do issues the request and discards the body. GET requests ask for the
// first byte only.
func (c *ImageChecker) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/*")
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	resp.Body.Close()
	return resp, nil
}

func refusesHead(status int) bool {
	return status == http.StatusMethodNotAllowed ||
		status == http.StatusForbidden ||
		status == http.StatusNotImplemented
}

// isImageType accepts image/* and the generic types some CDNs send for images.
func isImageType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream" || mediaType == "binary/octet-stream"
}
