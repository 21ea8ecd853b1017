// Package fetcher loads pages and extracts their document tree, either through
// a headless Chrome session or a plain HTTP request.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkwalk/dom"
)

// Loader modes.
const (
	ModeBrowser = "browser"
	ModeHTTP    = "http"
)

// Result is a successfully loaded page.
type Result struct {
	URL    string // final URL after redirects
	Status int
	Title  string
	Tree   *dom.Node
}

// Options configures the loaders.
type Options struct {
	Mode       string
	UserAgent  string
	Timeout    time.Duration
	ChromePath string // empty = auto-detect
	Headless   bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeBrowser,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Timeout:   30 * time.Second,
		Headless:  true,
	}
}

// Loader fetches one page at a time.
type Loader interface {
	Load(ctx context.Context, url string, timeout time.Duration) (*Result, error)
	Close() error
}

// New returns the loader selected by opts.Mode.
func New(opts Options, log *slog.Logger) (Loader, error) {
	switch opts.Mode {
	case ModeBrowser, "":
		return NewBrowser(opts, log), nil
	case ModeHTTP:
		return NewHTTP(opts, log), nil
	}
	return nil, fmt.Errorf("unknown fetcher mode %q", opts.Mode)
}

// userDataDir returns a persistent directory for Chrome user data so cookies
// survive between sessions.
func userDataDir() string {
	dir, _ := os.UserCacheDir()
	return filepath.Join(dir, "linkwalk-chrome-profile")
}

// ResolveLinks rewrites anchor hrefs relative to base, the way a browser's
// resolved href property does. Fragment-only, script and mail targets are
// left as written.
func ResolveLinks(root *dom.Node, base *url.URL) {
	if base == nil {
		return
	}
	dom.Walk(root, func(n *dom.Node, _ int) bool {
		if n.Tag != dom.TagAnchor || n.Href == "" {
			return true
		}
		href := strings.TrimSpace(n.Href)
		if strings.HasPrefix(href, "#") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil || ref.Scheme != "" {
			return true
		}
		n.Href = base.ResolveReference(ref).String()
		return true
	})
}
