package artdir

import (
	"context"
	"encoding/json"
	"time"
)

// Location holds all appraisers listed for one city. It is stored as one
// JSON file per city slug.
type Location struct {
	Slug       string       `json:"-"`
	City       string       `json:"city"`
	State      string       `json:"state"`
	Appraisers []*Appraiser `json:"appraisers"`
	SEO        *SEO         `json:"seo,omitempty"`

	// ModTime and Checksum describe the stored file the location was read
	// from. Checksum lets stores skip rewriting unchanged records.
	ModTime  time.Time `json:"-"`
	Checksum string    `json:"-"`

	// Extra holds keys the model does not know about. They are written
	// back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

var locationKeys = []string{"city", "state", "appraisers", "seo"}

// Validate returns an error if the location contains invalid fields.
func (l *Location) Validate() error {
	if l.Slug == "" {
		return Errorf(EINVALID, "location slug required")
	}
	if l.City == "" {
		return Errorf(EINVALID, "location %q: city required", l.Slug)
	}
	return nil
}

// UnmarshalJSON decodes a location and keeps unmodeled keys in Extra.
func (l *Location) UnmarshalJSON(data []byte) error {
	type location Location
	var v location
	extra, err := unmarshalWithExtra(data, &v, locationKeys)
	if err != nil {
		return err
	}
	slug, mod, sum := l.Slug, l.ModTime, l.Checksum
	*l = Location(v)
	l.Slug, l.ModTime, l.Checksum = slug, mod, sum
	l.Extra = extra
	return nil
}

// MarshalJSON encodes a location including any keys held in Extra.
func (l Location) MarshalJSON() ([]byte, error) {
	type location Location
	return marshalWithExtra(location(l), l.Extra)
}

// SEO holds page-level search metadata for a location.
type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var seoKeys = []string{"title", "description", "keywords"}

// UnmarshalJSON decodes the SEO block and keeps unmodeled keys in Extra.
func (s *SEO) UnmarshalJSON(data []byte) error {
	type seo SEO
	var v seo
	extra, err := unmarshalWithExtra(data, &v, seoKeys)
	if err != nil {
		return err
	}
	*s = SEO(v)
	s.Extra = extra
	return nil
}

// MarshalJSON encodes the SEO block including any keys held in Extra.
func (s SEO) MarshalJSON() ([]byte, error) {
	type seo SEO
	return marshalWithExtra(seo(s), s.Extra)
}

// Appraiser is one business profile within a location.
type Appraiser struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"imageUrl"`
	OldImageURL     string          `json:"oldImageUrl,omitempty"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"reviewCount"`
	Address         string          `json:"address,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Email           string          `json:"email,omitempty"`
	Website         string          `json:"website,omitempty"`
	Specialties     []string        `json:"specialties,omitempty"`
	Certifications  []string        `json:"certifications,omitempty"`
	Services        []string        `json:"services,omitempty"`
	ServicesOffered []string        `json:"services_offered,omitempty"`
	YearsInBusiness string          `json:"years_in_business,omitempty"`
	Pricing         string          `json:"pricing,omitempty"`
	BusinessHours   []BusinessHours `json:"businessHours,omitempty"`
	Reviews         []Review        `json:"reviews,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var appraiserKeys = []string{
	"id", "name", "imageUrl", "oldImageUrl", "rating", "reviewCount",
	"address", "phone", "email", "website", "specialties", "certifications",
	"services", "services_offered", "years_in_business", "pricing",
	"businessHours", "reviews",
}

// UnmarshalJSON decodes an appraiser and keeps unmodeled keys in Extra.
func (a *Appraiser) UnmarshalJSON(data []byte) error {
	type appraiser Appraiser
	var v appraiser
	extra, err := unmarshalWithExtra(data, &v, appraiserKeys)
	if err != nil {
		return err
	}
	*a = Appraiser(v)
	a.Extra = extra
	return nil
}

// MarshalJSON encodes an appraiser including any keys held in Extra.
func (a Appraiser) MarshalJSON() ([]byte, error) {
	type appraiser Appraiser
	return marshalWithExtra(appraiser(a), a.Extra)
}

// BusinessHours is one opening-hours line, e.g. {"Monday", "9:00 AM - 5:00 PM"}.
type BusinessHours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// Review is a customer review shown on an appraiser profile.
type Review struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Date    string  `json:"date,omitempty"`
	Content string  `json:"content,omitempty"`
}

// City is an entry in the city index file.
type City struct {
	City           string `json:"city"`
	State          string `json:"state"`
	Slug           string `json:"slug"`
	AppraiserCount int    `json:"appraiserCount"`
}

// LocationService represents a service for reading and writing location records.
type LocationService interface {
	// FindLocations returns locations matching the filter, ordered by slug.
	// Files that fail to parse are skipped and reported through the
	// returned Skipped slice of the result.
	FindLocations(ctx context.Context, filter LocationFilter) (*LocationSet, error)

	// FindLocationBySlug retrieves one location.
	// Returns ENOTFOUND if the location does not exist.
	FindLocationBySlug(ctx context.Context, slug string) (*Location, error)

	// SaveLocation writes the location back to storage. It reports
	// whether the stored bytes changed; unchanged records are not rewritten.
	SaveLocation(ctx context.Context, loc *Location) (bool, error)
}

// LocationFilter represents a filter for FindLocations.
type LocationFilter struct {
	// Slugs restricts results to the given slugs. Empty means all.
	Slugs []string
}

// Match reports whether slug passes the filter.
func (f LocationFilter) Match(slug string) bool {
	if len(f.Slugs) == 0 {
		return true
	}
	for _, s := range f.Slugs {
		if s == slug {
			return true
		}
	}
	return false
}

// LocationSet is the result of FindLocations.
type LocationSet struct {
	Locations []*Location
	Skipped   []SkippedFile
}

// SkippedFile records a file that could not be loaded.
type SkippedFile struct {
	Path string
	Err  error
}
