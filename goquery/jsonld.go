package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/artdir"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// JSONLD summarizes every structured data block on the page.
func (d *Document) JSONLD() []*artdir.JSONLD {
	var blocks []*artdir.JSONLD
	d.doc.Find(jsonLDSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, ParseJSONLD(s.Text()))
	})
	return blocks
}

// ParseJSONLD summarizes one JSON-LD script body. A body may be a single
// node, an array of nodes, or an object with an @graph array.
func ParseJSONLD(raw string) *artdir.JSONLD {
	block := &artdir.JSONLD{Raw: raw}

	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		block.Err = artdir.Errorf(artdir.EINVALID, "invalid JSON-LD: %v", err)
		return block
	}

	for _, node := range topLevelNodes(v) {
		types := nodeTypes(node)
		if len(types) == 0 {
			continue
		}
		block.Types = append(block.Types, types...)
		block.Items += nodeItems(node)
	}
	return block
}

// UpsertJSONLD replaces the first node whose @type is typ with v, or
// appends a new block to the head when there is none. A node may be a
// whole block, an element of a top-level array, or a member of an @graph.
// Other nodes are left untouched. It reports whether a node was replaced.
func (d *Document) UpsertJSONLD(typ string, v any) (bool, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return false, err
	}

	var replaced bool
	var upsertErr error
	d.doc.Find(jsonLDSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var block any
		if json.Unmarshal([]byte(s.Text()), &block) != nil {
			return true
		}
		if node, ok := block.(map[string]any); ok && hasType(node, typ) {
			s.SetText("\n" + string(data) + "\n")
			replaced = true
			return false
		}

		var repl any
		if err := json.Unmarshal(data, &repl); err != nil {
			upsertErr = err
			return false
		}
		if m, ok := repl.(map[string]any); ok {
			delete(m, "@context")
		}
		updated, ok := replaceNode(block, typ, repl)
		if !ok {
			return true
		}
		out, err := json.MarshalIndent(updated, "", "  ")
		if err != nil {
			upsertErr = err
			return false
		}
		s.SetText("\n" + string(out) + "\n")
		replaced = true
		return false
	})
	if upsertErr != nil {
		return false, upsertErr
	}
	if replaced {
		return true, nil
	}

	script := element(atom.Script, "type", "application/ld+json")
	script.AppendChild(&html.Node{Type: html.TextNode, Data: "\n" + string(data) + "\n"})
	d.head().AppendNodes(script)
	return false, nil
}

// replaceNode swaps the first node of type typ found in an array or an
// @graph for repl. It reports whether a node was swapped.
func replaceNode(v any, typ string, repl any) (any, bool) {
	switch t := v.(type) {
	case []any:
		for i, item := range t {
			if node, ok := item.(map[string]any); ok && hasType(node, typ) {
				t[i] = repl
				return t, true
			}
			if updated, ok := replaceNode(item, typ, repl); ok {
				t[i] = updated
				return t, true
			}
		}
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			if updated, ok := replaceNode(graph, typ, repl); ok {
				t["@graph"] = updated
				return t, true
			}
		}
	}
	return v, false
}

func hasType(node map[string]any, typ string) bool {
	for _, t := range nodeTypes(node) {
		if t == typ {
			return true
		}
	}
	return false
}

func topLevelNodes(v any) []map[string]any {
	var nodes []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			nodes = append(nodes, topLevelNodes(item)...)
		}
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					nodes = append(nodes, m)
				}
			}
		}
		nodes = append(nodes, t)
	}
	return nodes
}

func nodeTypes(node map[string]any) []string {
	switch t := node["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// nodeItems counts the entities a node lists: the length of
// itemListElement, else numberOfItems, else one for the node itself.
func nodeItems(node map[string]any) int {
	if elems, ok := node["itemListElement"].([]any); ok {
		return len(elems)
	}
	if n, ok := node["numberOfItems"].(float64); ok && n > 0 {
		return int(n)
	}
	return 1
}
