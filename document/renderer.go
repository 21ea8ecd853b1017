package document

import (
	"strings"

	"linkwalk/render"
)

// ChromeLines is the number of rows taken by the title and status bars.
const ChromeLines = 2

// Frame is everything drawn in one full redraw.
type Frame struct {
	Title    string
	URL      string
	Lines    []DisplayLine // the visible window only
	Selected int           // index into Lines of the highlighted row, -1 for none
	Status   string
	Info     string // right-aligned status text, e.g. "link 3/12"

	// Prompting replaces the status bar with an address prompt.
	Prompting bool
	Prompt    string
	Address   string
	Cursor    int // rune offset of the edit cursor in Address
}

// Renderer draws frames onto a canvas.
type Renderer struct {
	canvas      *render.Canvas
	indentWidth int
}

// NewRenderer creates a renderer for the given canvas. indentWidth is the
// number of spaces per nesting level.
func NewRenderer(c *render.Canvas, indentWidth int) *Renderer {
	if indentWidth < 0 {
		indentWidth = 0
	}
	return &Renderer{canvas: c, indentWidth: indentWidth}
}

// Canvas returns the canvas being drawn on.
func (r *Renderer) Canvas() *render.Canvas {
	return r.canvas
}

// Render clears the canvas and draws the title bar, the visible lines and the
// status bar.
func (r *Renderer) Render(f Frame) {
	c := r.canvas
	c.Clear()
	width, height := c.Width(), c.Height()
	if height == 0 || width == 0 {
		return
	}

	r.renderTitle(f)

	bodyHeight := height - ChromeLines
	for i := 0; i < len(f.Lines) && i < bodyHeight; i++ {
		line := f.Lines[i]
		y := i + 1
		text := r.lineText(line)
		if i == f.Selected {
			style := SelectedStyle(line.Tag)
			c.WriteString(0, y, render.TruncateToWidth(text, width), style)
			c.FillRow(y, style)
			continue
		}
		c.WriteString(0, y, render.TruncateToWidth(text, width), StyleFor(line.Tag))
	}

	if height >= ChromeLines {
		r.renderStatus(f)
	}
}

func (r *Renderer) lineText(line DisplayLine) string {
	return strings.Repeat(" ", line.Indent*r.indentWidth) + render.Sanitize(line.Content)
}

func (r *Renderer) renderTitle(f Frame) {
	c := r.canvas
	bar := render.Style{Reverse: true, Bold: true}
	c.DrawHLine(0, 0, c.Width(), ' ', bar)

	title := " " + render.Sanitize(f.Title)
	if f.URL != "" {
		title += " | " + f.URL
	}
	c.WriteString(0, 0, render.Truncate(title, c.Width()), bar)
}

func (r *Renderer) renderStatus(f Frame) {
	c := r.canvas
	y := c.Height() - 1
	width := c.Width()

	if f.Prompting {
		label := f.Prompt
		x := c.WriteString(0, y, label, render.Style{Bold: true})
		runes := []rune(f.Address)
		cursor := max(0, min(f.Cursor, len(runes)))
		// Keep the cursor on screen by showing the tail of long addresses.
		avail := width - x - 1
		start := 0
		if avail > 0 && cursor > avail {
			start = cursor - avail
		}
		c.WriteString(x, y, string(runes[start:]), render.Style{})
		cx := x + render.StringWidth(string(runes[start:cursor]))
		cell := c.Get(cx, y)
		c.Set(cx, y, cell.Rune, render.Style{Reverse: true})
		return
	}

	info := f.Info
	infoWidth := render.StringWidth(info)
	status := render.Truncate(render.Sanitize(f.Status), width-infoWidth-1)
	c.WriteString(0, y, status, render.Style{Dim: true})
	if info != "" && infoWidth < width {
		c.WriteString(width-infoWidth, y, info, render.Style{Dim: true})
	}
}

// Plain renders every line of a page as plain text, one per row.
func Plain(p *Page, indentWidth int) string {
	if p.Len() == 0 {
		return ""
	}
	r := Renderer{indentWidth: indentWidth}
	var sb strings.Builder
	for _, line := range p.Lines {
		sb.WriteString(r.lineText(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
