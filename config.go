package artdir

import (
	"regexp"
	"time"
)

// Config holds the settings shared by every command. It is loaded from
// artdir.yaml when present; zero fields fall back to DefaultConfig.
type Config struct {
	SiteURL    string           `yaml:"site_url"`
	DataDir    string           `yaml:"data_dir"`
	PublicDir  string           `yaml:"public_dir"`
	Images     ImageConfig      `yaml:"images"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Completion CompletionConfig `yaml:"completion"`
}

// ImageConfig tunes placeholder detection and image checks.
type ImageConfig struct {
	PlaceholderURL      string        `yaml:"placeholder_url"`
	PlaceholderPatterns []string      `yaml:"placeholder_patterns"`
	Timeout             time.Duration `yaml:"timeout"`
	Concurrency         int           `yaml:"concurrency"`
	RatePerHost         float64       `yaml:"rate_per_host"`
	MaxAge              time.Duration `yaml:"max_age"`
}

// IndexingConfig is the on-disk form of IndexingRules.
type IndexingConfig struct {
	Allow       []string `yaml:"allow"`
	Deny        []string `yaml:"deny"`
	SignalTypes []string `yaml:"signal_types"`
	MinItems    int      `yaml:"min_items"`
}

// CompletionConfig holds the values used to fill missing appraiser fields.
type CompletionConfig struct {
	Rating          float64  `yaml:"rating"`
	Phone           string   `yaml:"phone"`
	Specialties     []string `yaml:"specialties"`
	ServicesOffered []string `yaml:"services_offered"`
	Certifications  []string `yaml:"certifications"`
	YearsInBusiness string   `yaml:"years_in_business"`
	Pricing         string   `yaml:"pricing"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		SiteURL:   "https://art-appraiser-directory.appraisily.com",
		DataDir:   "src/data",
		PublicDir: "dist",
		Images: ImageConfig{
			PlaceholderURL: DefaultPlaceholderURL,
			Timeout:        10 * time.Second,
			Concurrency:    10,
			RatePerHost:    5,
			MaxAge:         24 * time.Hour,
		},
		Indexing: IndexingConfig{
			SignalTypes: []string{"ItemList", "LocalBusiness", "ProfessionalService"},
			MinItems:    3,
		},
		Completion: CompletionConfig{
			Rating:          4.5,
			Phone:           "Contact for phone number",
			Specialties:     []string{"Fine Art", "Antiques", "Collectibles"},
			ServicesOffered: []string{"Insurance Appraisals", "Estate Appraisals", "Donation Appraisals", "Fair Market Value Assessments"},
			Certifications:  []string{"Contact for certification details"},
			YearsInBusiness: "Contact for details",
			Pricing:         "Contact for pricing",
		},
	}
}

// Merge fills the zero fields of c from def.
func (c *Config) Merge(def *Config) {
	if c.SiteURL == "" {
		c.SiteURL = def.SiteURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.PublicDir == "" {
		c.PublicDir = def.PublicDir
	}

	img, d := &c.Images, def.Images
	if img.PlaceholderURL == "" {
		img.PlaceholderURL = d.PlaceholderURL
	}
	if img.Timeout <= 0 {
		img.Timeout = d.Timeout
	}
	if img.Concurrency <= 0 {
		img.Concurrency = d.Concurrency
	}
	if img.RatePerHost <= 0 {
		img.RatePerHost = d.RatePerHost
	}
	if img.MaxAge <= 0 {
		img.MaxAge = d.MaxAge
	}

	if len(c.Indexing.SignalTypes) == 0 {
		c.Indexing.SignalTypes = def.Indexing.SignalTypes
	}
	if c.Indexing.MinItems <= 0 {
		c.Indexing.MinItems = def.Indexing.MinItems
	}
	if c.Indexing.Allow == nil {
		c.Indexing.Allow = def.Indexing.Allow
	}
	if c.Indexing.Deny == nil {
		c.Indexing.Deny = def.Indexing.Deny
	}

	comp, dc := &c.Completion, def.Completion
	if comp.Rating <= 0 {
		comp.Rating = dc.Rating
	}
	if comp.Phone == "" {
		comp.Phone = dc.Phone
	}
	if len(comp.Specialties) == 0 {
		comp.Specialties = dc.Specialties
	}
	if len(comp.ServicesOffered) == 0 {
		comp.ServicesOffered = dc.ServicesOffered
	}
	if len(comp.Certifications) == 0 {
		comp.Certifications = dc.Certifications
	}
	if comp.YearsInBusiness == "" {
		comp.YearsInBusiness = dc.YearsInBusiness
	}
	if comp.Pricing == "" {
		comp.Pricing = dc.Pricing
	}
}

// PlaceholderPolicy compiles the configured placeholder settings.
// The built-in patterns always apply; configured patterns are added to them.
func (c *Config) PlaceholderPolicy() (*PlaceholderPolicy, error) {
	p := &PlaceholderPolicy{
		DefaultURL: c.Images.PlaceholderURL,
		Patterns:   DefaultPlaceholderPatterns(),
	}
	for _, pattern := range c.Images.PlaceholderPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid placeholder pattern %q: %v", pattern, err)
		}
		p.Patterns = append(p.Patterns, re)
	}
	return p, nil
}

// IndexingRules compiles the configured indexing rule table.
func (c *Config) IndexingRules() (*IndexingRules, error) {
	r := &IndexingRules{
		Allow:       c.Indexing.Allow,
		SignalTypes: c.Indexing.SignalTypes,
		MinItems:    c.Indexing.MinItems,
	}
	for _, pattern := range c.Indexing.Deny {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid deny pattern %q: %v", pattern, err)
		}
		r.Deny = append(r.Deny, re)
	}
	return r, nil
}
