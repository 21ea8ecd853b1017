package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FromHTML parses an HTML document and extracts the tree rooted at <body>.
func FromHTML(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	return FromHTMLNode(body), nil
}

// FromHTMLNode converts a parsed element using the same rules as the in-page walk:
// script and style are dropped, and only elements without element children keep
// their trimmed text content.
func FromHTMLNode(n *html.Node) *Node {
	if n == nil {
		return nil
	}
	if n.Type == html.DocumentNode {
		if body := findElement(n, "body"); body != nil {
			n = body
		}
	}
	return convert(n)
}

func convert(n *html.Node) *Node {
	name := "unknown"
	if n.Type == html.ElementNode && n.Data != "" {
		name = strings.ToLower(n.Data)
	}
	if name == "script" || name == "style" {
		return nil
	}

	node := &Node{Tag: ParseTag(name), Name: name}
	if node.Tag == TagAnchor {
		node.Href = getAttr(n, "href")
	}

	hasChildren := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		hasChildren = true
		if child := convert(c); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	if !hasChildren {
		node.Text = textContent(n)
	}
	return node
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(sb.String())
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
