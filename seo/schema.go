package seo

import (
	"fmt"
	"strings"

	"github.com/fwojciec/artdir"
)

const schemaContext = "https://schema.org"

// LocationTitle returns the page title of a location.
func LocationTitle(loc *artdir.Location) string {
	if loc.SEO != nil && strings.TrimSpace(loc.SEO.Title) != "" {
		return strings.TrimSpace(loc.SEO.Title)
	}
	return fmt.Sprintf("Art Appraisers in %s | Expert Art Valuation Services", placeName(loc))
}

// TemplateDescription is the description used when no better source exists.
func TemplateDescription(loc *artdir.Location) string {
	n := len(loc.Appraisers)
	noun := "art appraisers"
	if n == 1 {
		noun = "art appraiser"
	}
	return TruncateDescription(fmt.Sprintf(
		"Find %d trusted %s in %s. Compare ratings, specialties, and services for insurance, estate, and donation appraisals.",
		n, noun, placeName(loc)))
}

// ItemListSchema returns the ItemList of LocalBusiness entries for a location.
func ItemListSchema(loc *artdir.Location, siteURL string) map[string]any {
	base := strings.TrimSuffix(siteURL, "/")
	elems := make([]any, 0, len(loc.Appraisers))
	for i, a := range loc.Appraisers {
		elems = append(elems, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     localBusiness(loc, a, base),
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "ItemList",
		"name":            "Art Appraisers in " + placeName(loc),
		"url":             base + artdir.LocationPath(loc.Slug),
		"numberOfItems":   len(elems),
		"itemListElement": elems,
	}
}

// BreadcrumbSchema returns the Home > City breadcrumb for a location.
func BreadcrumbSchema(loc *artdir.Location, siteURL string) map[string]any {
	base := strings.TrimSuffix(siteURL, "/")
	return map[string]any{
		"@context": schemaContext,
		"@type":    "BreadcrumbList",
		"itemListElement": []any{
			map[string]any{"@type": "ListItem", "position": 1, "name": "Home", "item": base + "/"},
			map[string]any{"@type": "ListItem", "position": 2, "name": placeName(loc), "item": base + artdir.LocationPath(loc.Slug)},
		},
	}
}

func localBusiness(loc *artdir.Location, a *artdir.Appraiser, base string) map[string]any {
	b := map[string]any{
		"@type": "LocalBusiness",
		"name":  a.Name,
	}
	if a.ID != "" {
		b["@id"] = base + artdir.AppraiserPath(a.ID)
		b["url"] = base + artdir.AppraiserPath(a.ID)
	}
	if a.ImageURL != "" {
		b["image"] = a.ImageURL
	}
	if a.Phone != "" && strings.ContainsAny(a.Phone, "0123456789") {
		b["telephone"] = a.Phone
	}
	if a.Website != "" {
		b["sameAs"] = a.Website
	}
	addr := map[string]any{
		"@type":           "PostalAddress",
		"addressLocality": loc.City,
		"addressRegion":   loc.State,
		"addressCountry":  "US",
	}
	if a.Address != "" {
		addr["streetAddress"] = a.Address
	}
	b["address"] = addr
	if a.Rating > 0 && a.ReviewCount > 0 {
		b["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": a.Rating,
			"reviewCount": a.ReviewCount,
			"bestRating":  5,
		}
	}
	if len(a.Specialties) > 0 {
		b["knowsAbout"] = a.Specialties
	}
	return b
}

func placeName(loc *artdir.Location) string {
	if loc.State == "" {
		return loc.City
	}
	return loc.City + ", " + loc.State
}
