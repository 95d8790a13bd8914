package artdir

import (
	"regexp"
	"slices"
)

// Robots meta contents. A processed page carries exactly one of these.
const (
	RobotsIndex   = "index, follow"
	RobotsNoIndex = "noindex, follow"
)

// JSONLD summarizes one <script type="application/ld+json"> block.
type JSONLD struct {
	// Types holds every @type found at the top level or inside @graph.
	Types []string

	// Items counts listed entities: itemListElement length (or
	// numberOfItems) for lists, one for any other typed node.
	Items int

	// Raw is the script body as found in the page.
	Raw string

	// Err is set when the block is not valid JSON.
	Err error
}

// HasType reports whether the block declares typ.
func (b *JSONLD) HasType(typ string) bool {
	return slices.Contains(b.Types, typ)
}

// IndexingRules is the rule table deciding the robots directive of a location page.
type IndexingRules struct {
	// Allow lists indexable slugs. "*" allows every slug.
	Allow []string

	// Deny patterns override Allow.
	Deny []*regexp.Regexp

	// SignalTypes are the JSON-LD @type values that count as content signal.
	SignalTypes []string

	// MinItems is the signal needed before a page may be indexed.
	MinItems int
}

// IndexingDecision is the result of evaluating IndexingRules for a page.
type IndexingDecision struct {
	Robots string
	Reason string
	Signal int
}

// Indexable reports whether the decision allows indexing.
func (d IndexingDecision) Indexable() bool {
	return d.Robots == RobotsIndex
}

// Decide returns the robots directive for slug given the page's JSON-LD blocks.
func (r *IndexingRules) Decide(slug string, blocks []*JSONLD) IndexingDecision {
	signal := r.Signal(blocks)

	for _, re := range r.Deny {
		if re.MatchString(slug) {
			return IndexingDecision{Robots: RobotsNoIndex, Reason: "denied by pattern " + re.String(), Signal: signal}
		}
	}
	if !slices.Contains(r.Allow, "*") && !slices.Contains(r.Allow, slug) {
		return IndexingDecision{Robots: RobotsNoIndex, Reason: "not on allowlist", Signal: signal}
	}

	minItems := max(r.MinItems, 1)
	if signal < minItems {
		return IndexingDecision{Robots: RobotsNoIndex, Reason: "insufficient structured data", Signal: signal}
	}
	return IndexingDecision{Robots: RobotsIndex, Reason: "allowlisted with structured data", Signal: signal}
}

// Signal sums the items of every valid block declaring one of the signal types.
func (r *IndexingRules) Signal(blocks []*JSONLD) int {
	var n int
	for _, b := range blocks {
		if b.Err != nil {
			continue
		}
		for _, typ := range r.SignalTypes {
			if b.HasType(typ) {
				n += b.Items
				break
			}
		}
	}
	return n
}
