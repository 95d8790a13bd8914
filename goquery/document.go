// Package goquery parses and patches generated HTML pages: head metadata,
// robots directives, JSON-LD blocks, and the SPA mount point.
package goquery

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/artdir"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RootID is the id of the element the client bundle hydrates into.
const RootID = "root"

// headTag matches an opening <head> tag but not <header>.
var headTag = regexp.MustCompile(`(?i)<head[\s/>]`)

// Document is a parsed HTML page that can be inspected and patched.
type Document struct {
	doc     *goquery.Document
	hadHead bool
}

// Parse parses a full HTML document. The parser always produces html,
// head, and body elements even when the source omits them.
func Parse(source string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, artdir.Errorf(artdir.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{
		doc:     doc,
		hadHead: headTag.MatchString(source),
	}, nil
}

// Render serializes the document, including its doctype.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	for _, n := range d.doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// EnsureStructure repairs the skeleton the client bundle depends on and
// returns a description of each fix applied.
func (d *Document) EnsureStructure() []string {
	var fixes []string
	if !d.hadHead {
		fixes = append(fixes, "added <head>")
		d.hadHead = true
	}
	if d.doc.Find("#"+RootID).Length() == 0 {
		body := d.doc.Find("body").First()
		root := element(atom.Div, "id", RootID)
		body.PrependNodes(root)
		fixes = append(fixes, `added <div id="root">`)
	}
	return fixes
}

// RootEmpty reports whether the mount point is missing or has no content,
// which on a rendered page means hydration failed.
func (d *Document) RootEmpty() bool {
	root := d.doc.Find("#" + RootID).First()
	if root.Length() == 0 {
		return true
	}
	return root.Children().Length() == 0 && strings.TrimSpace(root.Text()) == ""
}

// Text returns the text content of the body.
func (d *Document) Text() string {
	return d.doc.Find("body").Text()
}

// Title returns the trimmed text of the first <title>.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// SetTitle leaves exactly one <title> in the head with the given text.
func (d *Document) SetTitle(title string) {
	titles := d.doc.Find("title")
	if titles.Length() == 0 {
		d.head().PrependNodes(element(atom.Title))
		titles = d.doc.Find("title")
	}
	titles.Slice(1, titles.Length()).Remove()
	titles.First().SetText(title)
}

// MetaName returns the content of the first <meta name=...>.
func (d *Document) MetaName(name string) (string, bool) {
	return d.doc.Find(metaSelector("name", name)).First().Attr("content")
}

// MetaProperty returns the content of the first <meta property=...>.
func (d *Document) MetaProperty(property string) (string, bool) {
	return d.doc.Find(metaSelector("property", property)).First().Attr("content")
}

// SetMetaName upserts <meta name=... content=...> and removes duplicates.
func (d *Document) SetMetaName(name, content string) {
	d.setMeta("name", name, content)
}

// SetMetaProperty upserts <meta property=... content=...> and removes duplicates.
func (d *Document) SetMetaProperty(property, content string) {
	d.setMeta("property", property, content)
}

func (d *Document) setMeta(attr, key, content string) {
	metas := d.doc.Find(metaSelector(attr, key))
	if metas.Length() == 0 {
		d.head().AppendNodes(element(atom.Meta, attr, key, "content", content))
		return
	}
	metas.Slice(1, metas.Length()).Remove()
	metas.First().SetAttr("content", content)
}

// Robots returns the content of every robots meta on the page.
func (d *Document) Robots() []string {
	var out []string
	d.doc.Find(metaSelector("name", "robots")).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.AttrOr("content", ""))
	})
	return out
}

// SetRobots leaves exactly one robots meta with the given content and
// returns the number of duplicates removed.
func (d *Document) SetRobots(content string) int {
	metas := d.doc.Find(metaSelector("name", "robots"))
	removed := max(metas.Length()-1, 0)
	d.setMeta("name", "robots", content)
	return removed
}

// Canonical returns the href of the canonical link.
func (d *Document) Canonical() string {
	return strings.TrimSpace(d.doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))
}

// SetCanonical leaves exactly one canonical link pointing at href.
func (d *Document) SetCanonical(href string) {
	links := d.doc.Find(`link[rel="canonical"]`)
	if links.Length() == 0 {
		d.head().AppendNodes(element(atom.Link, "rel", "canonical", "href", href))
		return
	}
	links.Slice(1, links.Length()).Remove()
	links.First().SetAttr("href", href)
}

// head returns the head element. The parser guarantees one exists.
func (d *Document) head() *goquery.Selection {
	return d.doc.Find("head").First()
}

// metaSelector matches meta tags by attribute value, ignoring case. Pages
// in the wild use both name="robots" and name="ROBOTS".
func metaSelector(attr, value string) string {
	return `meta[` + attr + `="` + value + `" i]`
}

// element builds an element node with attributes given as key/value pairs.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}
