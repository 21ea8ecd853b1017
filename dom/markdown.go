package dom

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromMarkdown builds a tree from a Markdown document. Headings deeper than
// level 3 fold into TagHeading3.
func FromMarkdown(src []byte) *Node {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	root := &Node{Tag: TagOther, Name: "body"}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if child := convertBlock(n, src); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	return root
}

func convertBlock(n ast.Node, src []byte) *Node {
	switch b := n.(type) {
	case *ast.Heading:
		tag := TagHeading3
		switch b.Level {
		case 1:
			tag = TagHeading1
		case 2:
			tag = TagHeading2
		}
		return inlineBlock(b, src, tag, tag.String())

	case *ast.Paragraph:
		return inlineBlock(b, src, TagParagraph, "p")

	case *ast.TextBlock:
		return inlineBlock(b, src, TagOther, "span")

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return codeBlock(n, src)

	case *ast.List:
		list := &Node{Tag: TagOther, Name: "ul"}
		if b.IsOrdered() {
			list.Name = "ol"
		}
		for item := b.FirstChild(); item != nil; item = item.NextSibling() {
			li := &Node{Tag: TagOther, Name: "li"}
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if child := convertBlock(c, src); child != nil {
					li.Children = append(li.Children, child)
				}
			}
			if li.HasChildren() {
				list.Children = append(list.Children, li)
			}
		}
		if !list.HasChildren() {
			return nil
		}
		return list

	case *ast.Blockquote:
		quote := &Node{Tag: TagOther, Name: "blockquote"}
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			if child := convertBlock(c, src); child != nil {
				quote.Children = append(quote.Children, child)
			}
		}
		if !quote.HasChildren() {
			return nil
		}
		return quote
	}
	return nil
}

// inlineBlock turns a block with inline content into a leaf, or into a container
// of text runs and anchors when the block holds links.
func inlineBlock(n ast.Node, src []byte, tag Tag, name string) *Node {
	runs := inlineRuns(n, src, tag)
	switch {
	case len(runs) == 0:
		return nil
	case len(runs) == 1 && runs[0].Tag != TagAnchor:
		runs[0].Name = name
		return runs[0]
	}
	return &Node{Tag: tag, Name: name, Children: runs}
}

func inlineRuns(block ast.Node, src []byte, tag Tag) []*Node {
	var runs []*Node
	var sb strings.Builder

	flush := func() {
		t := strings.Join(strings.Fields(sb.String()), " ")
		if t != "" {
			runs = append(runs, &Node{Tag: tag, Name: "span", Text: t})
		}
		sb.Reset()
	}

	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Link:
			flush()
			runs = append(runs, &Node{
				Tag:  TagAnchor,
				Name: "a",
				Text: strings.TrimSpace(plainText(v, src)),
				Href: string(v.Destination),
			})
			return
		case *ast.AutoLink:
			flush()
			runs = append(runs, &Node{
				Tag:  TagAnchor,
				Name: "a",
				Text: string(v.Label(src)),
				Href: string(v.URL(src)),
			})
			return
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
			return
		case *ast.String:
			sb.Write(v.Value)
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		visit(c)
	}
	flush()
	return runs
}

func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// codeBlock keeps one leaf per source line so each renders on its own row.
func codeBlock(n ast.Node, src []byte) *Node {
	pre := &Node{Tag: TagPreformatted, Name: "pre"}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(src)), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		pre.Children = append(pre.Children, &Node{Tag: TagPreformatted, Name: "code", Text: line})
	}
	if !pre.HasChildren() {
		return nil
	}
	return pre
}
