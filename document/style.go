package document

import (
	"linkwalk/dom"
	"linkwalk/render"
)

// StyleFor returns the display attribute for a tag.
func StyleFor(tag dom.Tag) render.Style {
	switch tag {
	case dom.TagHeading1:
		return render.Style{Bold: true, FgColor: render.ColorMagenta}
	case dom.TagHeading2:
		return render.Style{Bold: true, FgColor: render.ColorYellow}
	case dom.TagHeading3:
		return render.Style{Bold: true, FgColor: render.ColorGreen}
	case dom.TagParagraph:
		return render.Style{FgColor: render.ColorWhite}
	case dom.TagAnchor:
		return render.Style{Bold: true, Underline: true, FgColor: render.ColorBlue}
	default:
		return render.Style{Dim: true}
	}
}

// SelectedStyle is applied to the selected link line before presentation.
func SelectedStyle(tag dom.Tag) render.Style {
	s := StyleFor(tag)
	s.Reverse = true
	s.Dim = false
	return s
}
