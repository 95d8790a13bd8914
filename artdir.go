// Package artdir provides data-maintenance and SEO post-processing tools for
// a static art appraiser directory site. The tools repair location records,
// validate appraiser images, enrich generated HTML with metadata and
// structured data, and assemble sitemaps.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, etree/).
package artdir
