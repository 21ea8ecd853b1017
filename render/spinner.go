package render

// SpinnerStyle defines different spinner animation styles.
type SpinnerStyle int

const (
	SpinnerBraille SpinnerStyle = iota
	SpinnerGlobe
)

// Spinner cycles through animation frames. Loads block the input loop, so the
// frame advances once per load rather than on a timer.
type Spinner struct {
	style SpinnerStyle
	frame int
}

// NewSpinner creates a new spinner with the given style.
func NewSpinner(style SpinnerStyle) *Spinner {
	return &Spinner{style: style}
}

// Next advances to the following frame.
func (s *Spinner) Next() {
	s.frame++
}

// Frame returns the current animation frame string.
func (s *Spinner) Frame() string {
	frames := s.frames()
	return frames[s.frame%len(frames)]
}

func (s *Spinner) frames() []string {
	switch s.style {
	case SpinnerGlobe:
		return []string{"◐", "◓", "◑", "◒"}
	default:
		return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	}
}

// LoadingDisplay draws a boxed "loading" message over the canvas.
type LoadingDisplay struct {
	spinner *Spinner
}

// NewLoadingDisplay creates a new loading display.
func NewLoadingDisplay(style SpinnerStyle) *LoadingDisplay {
	return &LoadingDisplay{spinner: NewSpinner(style)}
}

// DrawBox renders message in a centered box and advances the spinner.
func (ld *LoadingDisplay) DrawBox(c *Canvas, title, message string) {
	width := c.Width()
	height := c.Height()

	frame := ld.spinner.Frame()
	ld.spinner.Next()

	maxText := width - 8
	if maxText < 1 {
		maxText = 1
	}
	message = Truncate(Sanitize(message), maxText-StringWidth(frame)-1)
	text := frame + " " + message
	textWidth := StringWidth(text)

	boxWidth := textWidth + 6
	if boxWidth < 30 {
		boxWidth = 30
	}
	if boxWidth > width {
		boxWidth = width
	}
	boxHeight := 5
	x := (width - boxWidth) / 2
	y := (height - boxHeight) / 2

	for row := y; row < y+boxHeight; row++ {
		for col := x; col < x+boxWidth; col++ {
			c.Set(col, row, ' ', Style{})
		}
	}
	c.DrawBox(x, y, boxWidth, boxHeight, RoundedBox, Style{Dim: true})
	if title != "" {
		c.WriteString(x+2, y, " "+title+" ", Style{Bold: true})
	}

	textX := x + (boxWidth-textWidth)/2
	c.WriteString(textX, y+2, frame, Style{Bold: true, FgColor: ColorCyan})
	c.WriteString(textX+StringWidth(frame)+1, y+2, message, Style{Dim: true})
}
