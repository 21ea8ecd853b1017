// Package viewport keeps a selected line inside a fixed-height window.
package viewport

// Window is the result of a scroll computation.
type Window struct {
	Offset   int // first visible line position
	Start    int // visible range [Start, End), clamped to available lines
	End      int
	Selected int // selected line position, or -1 when no line is selected
}

// Len returns the number of visible lines.
func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether line is inside the visible range.
func (w Window) Contains(line int) bool {
	return line >= w.Start && line < w.End
}

// ComputeWindow returns the scroll offset that keeps selected visible and the
// visible line range. The offset only moves when the selection would leave the
// window. An out-of-range selection leaves the offset unchanged.
func ComputeWindow(totalLines, pageSize, selected, priorOffset int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalLines < 0 {
		totalLines = 0
	}
	if priorOffset < 0 {
		priorOffset = 0
	}

	offset := priorOffset
	sel := -1
	if selected >= 0 && selected < totalLines {
		sel = selected
		switch {
		case sel < priorOffset:
			offset = sel
		case sel >= priorOffset+pageSize:
			offset = sel - pageSize + 1
		}
	}

	start := min(offset, totalLines)
	end := min(offset+pageSize, totalLines)
	return Window{Offset: offset, Start: start, End: end, Selected: sel}
}
