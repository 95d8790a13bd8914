package repair

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/artdir"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Standardize normalizes a location in place: it trims strings, formats
// US phone numbers, forces https websites, clamps ratings to [0,5],
// removes duplicate list entries, and assigns unique ids.
func Standardize(loc *artdir.Location) {
	loc.City = strings.TrimSpace(loc.City)
	loc.State = strings.TrimSpace(loc.State)

	for _, a := range loc.Appraisers {
		a.Name = strings.TrimSpace(a.Name)
		a.ImageURL = strings.TrimSpace(a.ImageURL)
		a.Address = strings.TrimSpace(a.Address)
		a.Email = strings.TrimSpace(a.Email)
		a.YearsInBusiness = strings.TrimSpace(a.YearsInBusiness)
		a.Pricing = strings.TrimSpace(a.Pricing)
		a.Phone = FormatPhone(a.Phone)
		a.Website = ForceHTTPS(a.Website)
		a.Rating = min(max(a.Rating, 0), 5)
		if a.ReviewCount < 0 {
			a.ReviewCount = 0
		}

		a.Specialties = dedupe(a.Specialties)
		a.Certifications = dedupe(a.Certifications)
		a.Services = dedupe(a.Services)
		a.ServicesOffered = dedupe(a.ServicesOffered)
	}

	AssignIDs(loc)
}

// AssignIDs gives every appraiser in loc a unique id. Existing ids are
// kept unless they repeat an earlier one, and are reserved before any new
// id is minted, so a minted id never displaces a published one. New ids
// are the slug of the appraiser's name, with -2, -3, ... appended on
// collision. Appraisers without a usable name get a name-based UUID
// derived from the location slug and their position, so reruns produce
// the same id.
func AssignIDs(loc *artdir.Location) {
	used := make(map[string]bool, len(loc.Appraisers))
	keep := make([]bool, len(loc.Appraisers))
	for i, a := range loc.Appraisers {
		id := strings.TrimSpace(a.ID)
		if id != "" && !used[id] {
			a.ID = id
			used[id] = true
			keep[i] = true
		}
	}

	for i, a := range loc.Appraisers {
		if keep[i] {
			continue
		}

		base := strings.TrimSpace(a.ID)
		if base == "" {
			base = Slugify(a.Name)
		}
		if base == "" {
			base = uuid.NewSHA1(uuid.NameSpaceURL, []byte(loc.Slug+"/"+strconv.Itoa(i))).String()
		}

		candidate := base
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		a.ID = candidate
		used[candidate] = true
	}
}

// Slugify lowercases s, strips accents, and joins alphanumeric runs with
// hyphens: "Café Arts & Antiques" becomes "cafe-arts-antiques".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(plain) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			hyphen = false
			continue
		}
		hyphen = true
	}
	return b.String()
}

// FormatPhone formats ten-digit US numbers as (xxx) xxx-xxxx, accepting an
// optional leading country code 1. Anything else is returned trimmed.
func FormatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

// ForceHTTPS upgrades http URLs and adds a scheme to bare hosts.
func ForceHTTPS(website string) string {
	website = strings.TrimSpace(website)
	lower := strings.ToLower(website)
	switch {
	case website == "":
		return ""
	case strings.HasPrefix(lower, "https://"):
		return website
	case strings.HasPrefix(lower, "http://"):
		return "https://" + website[len("http://"):]
	case strings.HasPrefix(lower, "//"):
		return "https:" + website
	case strings.Contains(website, "://"), strings.HasPrefix(lower, "mailto:"):
		return website
	default:
		return "https://" + website
	}
}

// BuildCityIndex summarizes locs for the city index file, ordered by slug.
func BuildCityIndex(locs []*artdir.Location) []artdir.City {
	cities := make([]artdir.City, 0, len(locs))
	for _, loc := range locs {
		cities = append(cities, artdir.City{
			City:           loc.City,
			State:          loc.State,
			Slug:           loc.Slug,
			AppraiserCount: len(loc.Appraisers),
		})
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Slug < cities[j].Slug })
	return cities
}

// dedupe trims entries and drops empty and repeated ones, keeping order.
func dedupe(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
