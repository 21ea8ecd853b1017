// Package welcome provides the page shown when linkwalk starts without an
// address.
package welcome

import (
	_ "embed"
	"fmt"
	"os"

	"linkwalk/dom"
)

// Title is the title bar text of the welcome page.
const Title = "Welcome"

//go:embed welcome.md
var builtin []byte

// Load returns the welcome page tree. A non-empty path replaces the built-in
// document with the Markdown file at path.
func Load(path string) (*dom.Node, error) {
	src := builtin
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading welcome page: %w", err)
		}
		src = data
	}
	return dom.FromMarkdown(src), nil
}
