package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"linkwalk/dom"
	"linkwalk/render"
)

func sampleTree() *dom.Node {
	return &dom.Node{Tag: dom.TagOther, Name: "body", Children: []*dom.Node{
		{Tag: dom.TagHeading1, Name: "h1", Text: "Title"},
		{Tag: dom.TagParagraph, Name: "p", Text: "Body text"},
		{Tag: dom.TagAnchor, Name: "a", Text: "Go", Href: "https://x.test"},
	}}
}

func TestFlattenScenario(t *testing.T) {
	page := Flatten(sampleTree())

	require.Len(t, page.Lines, 3)
	assert.Equal(t, "H: Title", page.Lines[0].Content)
	assert.Equal(t, "P: Body text", page.Lines[1].Content)
	assert.Equal(t, "1) Link: Go -> https://x.test", page.Lines[2].Content)
	for _, line := range page.Lines {
		assert.Equal(t, 1, line.Indent)
	}

	entries := page.Links.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, LinkEntry{Index: 1, Href: "https://x.test", Line: 2}, entries[0])
}

func TestFlattenNil(t *testing.T) {
	page := Flatten(nil)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 0, page.Links.MaxIndex())
	assert.Empty(t, page.Links.Entries())
}

func TestFlattenPrefixes(t *testing.T) {
	tests := []struct {
		tag  dom.Tag
		want string
	}{
		{dom.TagHeading1, "H: x"},
		{dom.TagHeading2, "Sub-H: x"},
		{dom.TagHeading3, "Sub-Sub-H: x"},
		{dom.TagParagraph, "P: x"},
		{dom.TagPreformatted, "x"},
		{dom.TagOther, "x"},
	}
	for _, tt := range tests {
		page := Flatten(&dom.Node{Tag: tt.tag, Text: "x"})
		require.Len(t, page.Lines, 1)
		assert.Equal(t, tt.want, page.Lines[0].Content, "tag %s", tt.tag)
		assert.Equal(t, 0, page.Lines[0].Indent, "root is depth 0")
	}
}

func TestLinkCaptionFallbacks(t *testing.T) {
	assert.Equal(t, "3) Link: Docs -> /docs", LinkCaption(3, "Docs", "/docs"))
	assert.Equal(t, "1) Link: /docs -> /docs", LinkCaption(1, "", "/docs"))
	assert.Equal(t, "2) Link: (no-text) -> ", LinkCaption(2, "", ""))
}

func TestFlattenAnchorChildrenAndEmptyNodes(t *testing.T) {
	root := &dom.Node{Children: []*dom.Node{
		{Tag: dom.TagOther},
		{Tag: dom.TagAnchor, Href: "https://a.test", Children: []*dom.Node{
			{Tag: dom.TagOther, Text: "inner"},
		}},
		{Tag: dom.TagOther, Children: []*dom.Node{
			{Tag: dom.TagAnchor},
		}},
	}}

	page := Flatten(root)
	require.Len(t, page.Lines, 3)
	assert.Equal(t, "1) Link: https://a.test -> https://a.test", page.Lines[0].Content)
	assert.Equal(t, "inner", page.Lines[1].Content)
	assert.Equal(t, 2, page.Lines[1].Indent)
	assert.Equal(t, "2) Link: (no-text) -> ", page.Lines[2].Content)

	href, ok := page.Links.HrefOf(2)
	require.True(t, ok)
	assert.Empty(t, href)
}

func TestRegistryLookups(t *testing.T) {
	root := &dom.Node{Children: []*dom.Node{
		{Tag: dom.TagParagraph, Text: "intro"},
		{Tag: dom.TagAnchor, Text: "one", Href: "https://one.test"},
		{Tag: dom.TagParagraph, Text: "middle"},
		{Tag: dom.TagAnchor, Text: "two", Href: "#two"},
	}}
	reg := Flatten(root).Links

	assert.Equal(t, 2, reg.MaxIndex())

	line, ok := reg.LineOf(2)
	require.True(t, ok)
	assert.Equal(t, 3, line)

	idx, ok := reg.LinkAtLine(1)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = reg.LinkAtLine(0)
	assert.False(t, ok, "paragraph line is not a link")
	_, ok = reg.HrefOf(0)
	assert.False(t, ok)
	_, ok = reg.HrefOf(3)
	assert.False(t, ok)

	idx, ok = reg.FirstAtOrAfter(2)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	idx, ok = reg.LastAtOrBefore(2)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = reg.LastAtOrBefore(0)
	assert.False(t, ok)
}

func drawTree(t *rapid.T, depth int) *dom.Node {
	tag := rapid.SampledFrom([]dom.Tag{
		dom.TagOther, dom.TagHeading1, dom.TagHeading2, dom.TagHeading3,
		dom.TagParagraph, dom.TagAnchor, dom.TagPreformatted,
	}).Draw(t, "tag")
	n := &dom.Node{Tag: tag}
	if tag == dom.TagAnchor {
		n.Href = rapid.SampledFrom([]string{"", "https://x.test/a", "#frag", "/rel", "mailto:a@b.c"}).Draw(t, "href")
	}

	kids := 0
	if depth < 4 {
		kids = rapid.IntRange(0, 3).Draw(t, "kids")
	}
	if kids == 0 {
		n.Text = rapid.SampledFrom([]string{"", "alpha", "beta gamma"}).Draw(t, "text")
	}
	for i := 0; i < kids; i++ {
		n.Children = append(n.Children, drawTree(t, depth+1))
	}
	return n
}

func anchorsInPreOrder(root *dom.Node) []*dom.Node {
	var anchors []*dom.Node
	dom.Walk(root, func(n *dom.Node, _ int) bool {
		if n.Tag == dom.TagAnchor {
			anchors = append(anchors, n)
		}
		return true
	})
	return anchors
}

func TestFlattenProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root := drawTree(t, 0)
		page := Flatten(root)
		entries := page.Links.Entries()

		anchors := anchorsInPreOrder(root)
		if len(entries) != len(anchors) {
			t.Fatalf("got %d links for %d anchors", len(entries), len(anchors))
		}

		prevLine := -1
		for i, e := range entries {
			if e.Index != i+1 {
				t.Fatalf("entry %d has index %d", i, e.Index)
			}
			if e.Href != anchors[i].Href {
				t.Fatalf("entry %d href %q, anchor href %q", i, e.Href, anchors[i].Href)
			}
			if e.Line <= prevLine {
				t.Fatalf("line positions not strictly increasing: %d after %d", e.Line, prevLine)
			}
			prevLine = e.Line
			if e.Line < 0 || e.Line >= len(page.Lines) {
				t.Fatalf("entry %d line %d out of range [0,%d)", e.Index, e.Line, len(page.Lines))
			}
			content := page.Lines[e.Line].Content
			if !strings.HasPrefix(content, fmt.Sprintf("%d) ", e.Index)) || !strings.Contains(content, e.Href) {
				t.Fatalf("line %q does not carry index %d and href %q", content, e.Index, e.Href)
			}
			back, ok := page.Links.LinkAtLine(e.Line)
			if !ok || back != e.Index {
				t.Fatalf("LinkAtLine(%d) = %d, %v", e.Line, back, ok)
			}
		}

		again := Flatten(root)
		if !assert.ObjectsAreEqual(page.Lines, again.Lines) || !assert.ObjectsAreEqual(entries, again.Links.Entries()) {
			t.Fatalf("flatten is not idempotent")
		}
	})
}

func TestRendererFrame(t *testing.T) {
	page := Flatten(sampleTree())
	canvas := render.NewCanvas(40, 6)
	r := NewRenderer(canvas, 2)

	r.Render(Frame{
		Title:    "Example",
		URL:      "https://x.test",
		Lines:    page.Lines,
		Selected: 2,
		Status:   "Navigated to: https://x.test",
		Info:     "1/1",
	})

	text := canvas.PlainText()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, " Example | https://x.test", lines[0])
	assert.Equal(t, "  H: Title", lines[1])
	assert.Equal(t, "  P: Body text", lines[2])
	assert.Equal(t, "  1) Link: Go -> https://x.test", lines[3])
	assert.Equal(t, "", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "Navigated to"))
	assert.True(t, strings.HasSuffix(lines[5], "1/1"))

	assert.True(t, canvas.Get(2, 3).Style.Reverse, "selected link is highlighted")
	assert.True(t, canvas.Get(39, 3).Style.Reverse, "highlight spans the row")
	assert.False(t, canvas.Get(2, 2).Style.Reverse)
}

func TestRendererPrompt(t *testing.T) {
	canvas := render.NewCanvas(30, 4)
	r := NewRenderer(canvas, 2)
	r.Render(Frame{Selected: -1, Prompting: true, Prompt: "Go to: ", Address: "https://a", Cursor: 9})

	lines := strings.Split(strings.TrimRight(canvas.PlainText(), "\n"), "\n")
	assert.Equal(t, "Go to: https://a", lines[len(lines)-1])
	assert.True(t, canvas.Get(7+9, 3).Style.Reverse, "cursor cell is reversed")
}

func TestPlain(t *testing.T) {
	got := Plain(Flatten(sampleTree()), 1)
	assert.Equal(t, " H: Title\n P: Body text\n 1) Link: Go -> https://x.test\n", got)
	assert.Equal(t, "", Plain(Flatten(nil), 1))
}
