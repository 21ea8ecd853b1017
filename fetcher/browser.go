package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"linkwalk/dom"
)

// stealthScript masks the most common automation checks.
// Based on puppeteer-extra-plugin-stealth techniques.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});

window.chrome = {
    runtime: {},
    loadTimes: function() {},
    csi: function() {},
    app: {},
};

Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en'],
});

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`

// walkScript serialises document.body into the {tag, text, href, children}
// shape decoded by dom.Node. script and style elements are dropped, and only
// elements without element children carry text.
const walkScript = `(() => {
    const walk = (el) => {
        const tag = el.tagName ? el.tagName.toLowerCase() : 'unknown';
        if (tag === 'script' || tag === 'style') return null;
        const leaf = !el.children || el.children.length === 0;
        let text = null;
        if (leaf) {
            const raw = el.textContent ? el.textContent.trim() : '';
            if (raw.length > 0) text = raw;
        }
        let href;
        if (tag === 'a') {
            const raw = el.getAttribute('href') || '';
            href = raw.startsWith('#') ? raw : (el.href || raw);
        }
        const node = { tag: tag, text: text, href: href, children: [] };
        for (let i = 0; el.children && i < el.children.length; i++) {
            const child = walk(el.children[i]);
            if (child) node.children.push(child);
        }
        return node;
    };
    return document.body ? walk(document.body) : null;
})()`

// Browser loads pages in one headless Chrome tab that is reused for the
// whole session.
type Browser struct {
	opts Options
	log  *slog.Logger

	allocCancel context.CancelFunc
	tab         context.Context
	tabCancel   context.CancelFunc
}

// NewBrowser creates a Chrome loader. Chrome is started on the first Load.
func NewBrowser(opts Options, log *slog.Logger) *Browser {
	return &Browser{opts: opts, log: log}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-service-autorun", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.UserAgent(b.opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserDataDir(userDataDir()),
	}
	if b.opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if b.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.opts.ChromePath))
	}
	return allocOpts
}

// start launches Chrome and prepares the tab if not already running.
func (b *Browser) start() error {
	if b.tab != nil {
		return nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions()...)
	tab, tabCancel := chromedp.NewContext(allocCtx)

	err := chromedp.Run(tab,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		network.SetExtraHTTPHeaders(network.Headers(map[string]any{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})),
	)
	if err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("starting chrome: %w", err)
	}

	b.allocCancel = allocCancel
	b.tab = tab
	b.tabCancel = tabCancel
	b.log.Info("chrome started", "headless", b.opts.Headless)
	return nil
}

// Load navigates the tab to targetURL and extracts the rendered tree and title.
// Cancelling ctx or exceeding timeout aborts the wait; the tab stays usable.
func (b *Browser) Load(ctx context.Context, targetURL string, timeout time.Duration) (*Result, error) {
	if err := b.start(); err != nil {
		return nil, &Error{Kind: KindUnexpected, URL: targetURL, Detail: err.Error(), Err: err}
	}
	if timeout <= 0 {
		timeout = b.opts.Timeout
	}

	runCtx, cancel := context.WithTimeout(b.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(targetURL))
	if err != nil {
		return nil, Classify(targetURL, err)
	}
	if resp == nil {
		return nil, &Error{Kind: KindNoResponse, URL: targetURL, Detail: "no response from " + targetURL}
	}
	if resp.Status >= 400 {
		return nil, StatusError(targetURL, int(resp.Status))
	}

	var raw []byte
	var title, finalURL string
	err = chromedp.Run(runCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(walkScript, &raw),
		chromedp.Location(&finalURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// A missing title is not a failure.
			if err := chromedp.Title(&title).Do(ctx); err != nil {
				title = ""
			}
			return nil
		}),
	)
	if err != nil {
		return nil, Classify(targetURL, err)
	}

	tree, err := decodeTree(raw)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, URL: targetURL, Detail: err.Error(), Err: err}
	}
	if finalURL == "" {
		finalURL = targetURL
	}

	b.log.Debug("chrome load",
		"url", finalURL,
		"status", resp.Status,
		"nodes", dom.Count(tree),
		"elapsed", time.Since(start))

	return &Result{
		URL:    finalURL,
		Status: int(resp.Status),
		Title:  strings.TrimSpace(title),
		Tree:   tree,
	}, nil
}

// decodeTree parses the walk script's JSON result. A null result is an
// empty page.
func decodeTree(raw []byte) (*dom.Node, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == "undefined" {
		return nil, nil
	}
	var root dom.Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decoding page tree: %w", err)
	}
	return &root, nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	if b.tab == nil {
		return nil
	}
	err := chromedp.Cancel(b.tab)
	b.tabCancel()
	b.allocCancel()
	b.tab = nil
	return err
}
