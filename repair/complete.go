package repair

import (
	"math"
	"strings"

	"github.com/fwojciec/artdir"
)

// Completer fills missing appraiser fields with heuristics and defaults.
type Completer struct {
	Defaults artdir.CompletionConfig

	// SiteURL is used to build the fallback website of an appraiser,
	// their own page on the directory.
	SiteURL string
}

// specialtyKeywords maps name fragments to the specialty they imply.
var specialtyKeywords = []struct {
	keyword   string
	specialty string
}{
	{"antique", "Antiques"},
	{"fine art", "Fine Art"},
	{"gallery", "Fine Art"},
	{"jewel", "Jewelry"},
	{"gem", "Jewelry"},
	{"coin", "Coins"},
	{"numismatic", "Coins"},
	{"stamp", "Stamps"},
	{"book", "Rare Books"},
	{"furniture", "Furniture"},
	{"estate", "Estate Contents"},
	{"auction", "Auction Services"},
	{"collectible", "Collectibles"},
	{"asian", "Asian Art"},
	{"silver", "Silver"},
	{"watch", "Watches"},
}

// Complete fills the missing fields of every appraiser in loc and returns
// the number of fields it set. After it returns, rating, phone, website,
// specialties, services offered, certifications, years in business, and
// pricing are non-empty on every appraiser.
func (c *Completer) Complete(loc *artdir.Location) int {
	n := 0
	for _, a := range loc.Appraisers {
		n += c.completeAppraiser(a)
	}
	return n
}

func (c *Completer) completeAppraiser(a *artdir.Appraiser) int {
	n := 0
	d := c.Defaults

	if len(a.Reviews) > a.ReviewCount {
		a.ReviewCount = len(a.Reviews)
		n++
	}
	if a.Rating <= 0 {
		if mean, ok := meanRating(a.Reviews); ok {
			a.Rating = mean
		} else {
			a.Rating = d.Rating
		}
		n++
	}
	if strings.TrimSpace(a.Phone) == "" {
		a.Phone = d.Phone
		n++
	}
	if strings.TrimSpace(a.Website) == "" {
		a.Website = c.appraiserPage(a)
		n++
	}
	if len(a.Specialties) == 0 {
		a.Specialties = inferSpecialties(a.Name)
		if len(a.Specialties) == 0 {
			a.Specialties = clone(d.Specialties)
		}
		n++
	}
	if len(a.ServicesOffered) == 0 {
		if len(a.Services) > 0 {
			a.ServicesOffered = clone(a.Services)
		} else {
			a.ServicesOffered = clone(d.ServicesOffered)
		}
		n++
	}
	if len(a.Certifications) == 0 {
		a.Certifications = clone(d.Certifications)
		n++
	}
	if strings.TrimSpace(a.YearsInBusiness) == "" {
		a.YearsInBusiness = d.YearsInBusiness
		n++
	}
	if strings.TrimSpace(a.Pricing) == "" {
		a.Pricing = d.Pricing
		n++
	}
	return n
}

func (c *Completer) appraiserPage(a *artdir.Appraiser) string {
	base := strings.TrimSuffix(c.SiteURL, "/")
	if base == "" {
		base = artdir.DefaultConfig().SiteURL
	}
	if a.ID == "" {
		return base
	}
	return base + artdir.AppraiserPath(a.ID)
}

// meanRating returns the mean of the positive review ratings rounded to
// one decimal.
func meanRating(reviews []artdir.Review) (float64, bool) {
	var sum float64
	var count int
	for _, r := range reviews {
		if r.Rating > 0 {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return math.Round(sum/float64(count)*10) / 10, true
}

func inferSpecialties(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	seen := make(map[string]bool)
	for _, kw := range specialtyKeywords {
		if strings.Contains(lower, kw.keyword) && !seen[kw.specialty] {
			seen[kw.specialty] = true
			out = append(out, kw.specialty)
		}
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
