package artdir

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// ImageClass is the outcome of classifying an appraiser image URL.
type ImageClass string

// ImageClass constants.
const (
	ImageOK          ImageClass = "ok"
	ImageBroken      ImageClass = "broken"
	ImagePlaceholder ImageClass = "placeholder"
)

// ImageCheck is the result of checking whether an image URL resolves.
type ImageCheck struct {
	URL         string
	Valid       bool
	Status      int    // HTTP status, 0 when the request never completed
	ContentType string
	Reason      string // short explanation when Valid is false
	CheckedAt   time.Time
}

// ImageChecker checks image URLs for liveness.
type ImageChecker interface {
	// CheckImage requests the URL and reports whether it serves an image.
	// Network failures and malformed URLs are reported as an invalid
	// check, not an error; the error is reserved for context cancellation.
	CheckImage(ctx context.Context, url string) (*ImageCheck, error)
}

// Retryable reports whether the failure may be transient: no response at
// all, rate limiting, or a server error.
func (c *ImageCheck) Retryable() bool {
	if c.Valid || c.Reason == ReasonMalformedURL {
		return false
	}
	return c.Status == 0 || c.Status == 429 || c.Status >= 500
}

// Reasons recorded on invalid checks.
const (
	ReasonMissing      = "missing"
	ReasonMalformedURL = "malformed URL"
	ReasonNotImage     = "not an image"
)

// ImageSource identifies where an inventory record came from.
type ImageSource string

// ImageSource constants.
const (
	SourceCheck    ImageSource = "check"
	SourceImageKit ImageSource = "imagekit"
)

// ImageRecord is a cached inventory entry for one image URL.
type ImageRecord struct {
	URL       string      `json:"url"`
	ID        string      `json:"id"` // appraiser or image id
	Valid     bool        `json:"valid"`
	Status    int         `json:"status"`
	Source    ImageSource `json:"source"`
	CheckedAt time.Time   `json:"checked"`
}

// Validate returns an error if the record contains invalid fields.
func (r *ImageRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "image record URL required")
	}
	if r.Source == "" {
		return Errorf(EINVALID, "image record source required")
	}
	return nil
}

// Fresh reports whether the record was checked within maxAge of now.
func (r *ImageRecord) Fresh(now time.Time, maxAge time.Duration) bool {
	return !r.CheckedAt.IsZero() && now.Sub(r.CheckedAt) < maxAge
}

// ImageInventory represents a persistent cache of image check results.
type ImageInventory interface {
	// FindImageByURL retrieves the record for a URL.
	// Returns ENOTFOUND if the URL has never been recorded.
	FindImageByURL(ctx context.Context, url string) (*ImageRecord, error)

	// FindImages retrieves records matching the filter.
	FindImages(ctx context.Context, filter ImageFilter) ([]*ImageRecord, error)

	// UpsertImage inserts or replaces the record for rec.URL.
	UpsertImage(ctx context.Context, rec *ImageRecord) error

	// DeleteImages removes records matching the filter and returns the count.
	DeleteImages(ctx context.Context, filter ImageFilter) (int, error)
}

// ImageFilter represents a filter for FindImages and DeleteImages.
type ImageFilter struct {
	URL    *string      `json:"url"`
	ID     *string      `json:"id"`
	Source *ImageSource `json:"source"`
	Valid  *bool        `json:"valid"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// PlaceholderPolicy decides which image URLs are known stand-ins.
type PlaceholderPolicy struct {
	// DefaultURL is substituted for broken images.
	DefaultURL string

	// Patterns match URLs that are placeholders already.
	Patterns []*regexp.Regexp
}

// DefaultPlaceholderURL is the stand-in used when no config overrides it.
const DefaultPlaceholderURL = "https://ik.imagekit.io/appraisily/placeholder-art-appraiser.jpg"

// DefaultPlaceholderPatterns lists the stand-in hosts and names seen in the data.
func DefaultPlaceholderPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)placeholder`),
		regexp.MustCompile(`(?i)^https?://(via\.)?placehold\.(co|it)/`),
		regexp.MustCompile(`(?i)^https?://dummyimage\.com/`),
		regexp.MustCompile(`(?i)/default[-_](image|avatar|profile)\.`),
		regexp.MustCompile(`(?i)^https?://source\.unsplash\.com/random`),
	}
}

// IsPlaceholder reports whether url is the default or matches a placeholder pattern.
func (p *PlaceholderPolicy) IsPlaceholder(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	if p.DefaultURL != "" && url == p.DefaultURL {
		return true
	}
	for _, re := range p.Patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
