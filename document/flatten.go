// Package document turns a page tree into addressable display lines and
// draws them onto the terminal canvas.
package document

import (
	"fmt"

	"linkwalk/dom"
)

// DisplayLine is one renderable row.
type DisplayLine struct {
	Indent  int // depth of the originating node
	Content string
	Tag     dom.Tag
	Link    int // link index, 0 when the line is not a link
}

// Page is the result of flattening one tree.
type Page struct {
	Lines []DisplayLine
	Links *Registry
}

// Len returns the number of lines.
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Lines)
}

// Flatten walks root depth-first in pre-order and emits one line per anchor
// and per node with text. Link indices start at 1 on every call.
// A nil root yields an empty page.
func Flatten(root *dom.Node) *Page {
	f := &flattener{next: 1}
	f.visit(root, 0)
	return &Page{
		Lines: f.lines,
		Links: newRegistry(f.entries),
	}
}

// flattener accumulates lines and link entries for a single pass.
type flattener struct {
	lines   []DisplayLine
	entries []LinkEntry
	next    int
}

func (f *flattener) visit(n *dom.Node, depth int) {
	if n == nil {
		return
	}

	switch {
	case n.Tag == dom.TagAnchor:
		index := f.next
		f.next++
		f.entries = append(f.entries, LinkEntry{
			Index: index,
			Href:  n.Href,
			Line:  len(f.lines),
		})
		f.lines = append(f.lines, DisplayLine{
			Indent:  depth,
			Content: LinkCaption(index, n.Text, n.Href),
			Tag:     n.Tag,
			Link:    index,
		})
	case n.Text != "":
		f.lines = append(f.lines, DisplayLine{
			Indent:  depth,
			Content: Prefix(n.Tag) + n.Text,
			Tag:     n.Tag,
		})
	}

	for _, child := range n.Children {
		f.visit(child, depth+1)
	}
}

// LinkCaption formats an anchor line. The label falls back to the href, then
// to "(no-text)".
func LinkCaption(index int, text, href string) string {
	label := text
	if label == "" {
		label = href
	}
	if label == "" {
		label = "(no-text)"
	}
	return fmt.Sprintf("%d) Link: %s -> %s", index, label, href)
}

// Prefix returns the line prefix for a tag.
func Prefix(tag dom.Tag) string {
	switch tag {
	case dom.TagHeading1:
		return "H: "
	case dom.TagHeading2:
		return "Sub-H: "
	case dom.TagHeading3:
		return "Sub-Sub-H: "
	case dom.TagParagraph:
		return "P: "
	default:
		return ""
	}
}
