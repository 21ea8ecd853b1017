package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"linkwalk/dom"
)

// maxBodyBytes caps how much of a response is parsed.
const maxBodyBytes = 16 << 20

// HTTP loads pages with a plain GET. No JavaScript runs.
type HTTP struct {
	client *http.Client
	opts   Options
	log    *slog.Logger
}

// NewHTTP creates an HTTP loader.
func NewHTTP(opts Options, log *slog.Logger) *HTTP {
	return &HTTP{
		client: &http.Client{},
		opts:   opts,
		log:    log,
	}
}

// Load fetches targetURL and extracts its body tree and title.
func (h *HTTP) Load(ctx context.Context, targetURL string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = h.opts.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, URL: targetURL, Detail: fmt.Sprintf("creating request: %v", err), Err: err}
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, Classify(targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, StatusError(targetURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, Classify(targetURL, fmt.Errorf("reading response: %w", err))
	}

	finalURL := resp.Request.URL
	base := finalURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := finalURL.Parse(href); err == nil {
			base = u
		}
	}

	var tree *dom.Node
	if body := doc.Find("body").First(); body.Length() > 0 {
		tree = dom.FromHTMLNode(body.Get(0))
	}
	ResolveLinks(tree, base)

	title := strings.TrimSpace(doc.Find("head title").First().Text())

	h.log.Debug("http load",
		"url", finalURL.String(),
		"status", resp.StatusCode,
		"nodes", dom.Count(tree),
		"elapsed", time.Since(start))

	return &Result{
		URL:    finalURL.String(),
		Status: resp.StatusCode,
		Title:  title,
		Tree:   tree,
	}, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
