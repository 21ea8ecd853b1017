// Package dom holds the structural page model handed to the flattener.
package dom

import (
	"encoding/json"
	"strings"
)

// Tag is the semantic category of a node.
type Tag int

const (
	TagOther Tag = iota
	TagHeading1
	TagHeading2
	TagHeading3
	TagParagraph
	TagAnchor
	TagPreformatted
)

var tagNames = map[Tag]string{
	TagOther:        "other",
	TagHeading1:     "h1",
	TagHeading2:     "h2",
	TagHeading3:     "h3",
	TagParagraph:    "p",
	TagAnchor:       "a",
	TagPreformatted: "pre",
}

// ParseTag maps an element name to its category. Unknown names are TagOther.
func ParseTag(name string) Tag {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "h1":
		return TagHeading1
	case "h2":
		return TagHeading2
	case "h3":
		return TagHeading3
	case "p":
		return TagParagraph
	case "a":
		return TagAnchor
	case "pre":
		return TagPreformatted
	default:
		return TagOther
	}
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "other"
}

// Node is one markup element. Text is only set on leaves.
type Node struct {
	Tag      Tag
	Name     string // raw element name, e.g. "div"
	Text     string
	Href     string // anchors only
	Children []*Node
}

// wireNode is the shape produced by the in-page walk script.
type wireNode struct {
	Tag      string      `json:"tag"`
	Text     *string     `json:"text"`
	Href     *string     `json:"href,omitempty"`
	Children []*wireNode `json:"children"`
}

// UnmarshalJSON decodes the {tag, text, href, children} objects returned by the browser.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = *w.node()
	return nil
}

// MarshalJSON encodes the node in the same shape UnmarshalJSON accepts.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(n))
}

func (w *wireNode) node() *Node {
	n := &Node{
		Tag:  ParseTag(w.Tag),
		Name: strings.ToLower(w.Tag),
	}
	if w.Text != nil {
		n.Text = strings.TrimSpace(*w.Text)
	}
	if w.Href != nil {
		n.Href = *w.Href
	}
	for _, c := range w.Children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, c.node())
	}
	return n
}

func toWire(n *Node) *wireNode {
	if n == nil {
		return nil
	}
	name := n.Name
	if name == "" {
		name = n.Tag.String()
	}
	w := &wireNode{Tag: name, Children: []*wireNode{}}
	if n.Text != "" {
		text := n.Text
		w.Text = &text
	}
	if n.Tag == TagAnchor {
		href := n.Href
		w.Href = &href
	}
	for _, c := range n.Children {
		w.Children = append(w.Children, toWire(c))
	}
	return w
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// HasChildren returns true if the node has child elements.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}
