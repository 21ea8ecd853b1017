// Package nav implements the navigation state machine: link selection,
// scrolling, link activation and the address prompt.
package nav

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"linkwalk/document"
	"linkwalk/dom"
	"linkwalk/fetcher"
	"linkwalk/lineedit"
	"linkwalk/urlcheck"
	"linkwalk/viewport"
)

// DefaultTitle is shown when a page has no title.
const DefaultTitle = "No Title"

const (
	msgNotReachable    = "Link is not reachable."
	msgNotApplicable   = "left/right: not applicable"
	msgNothingToReload = "Nothing to reload."
)

// Loader acquires pages. Implementations report failures as *fetcher.Error;
// other errors are classified as unexpected.
type Loader interface {
	Load(ctx context.Context, url string, timeout time.Duration) (*fetcher.Result, error)
}

// Options configures a Navigator.
type Options struct {
	Timeout  time.Duration
	PageSize int

	// OnLoad is called before each blocking page load.
	OnLoad func(url string)
}

// Navigator owns the current page and the navigation state. It is not safe
// for concurrent use; one event is fully handled before the next.
type Navigator struct {
	loader Loader
	opts   Options
	log    *slog.Logger

	mode     Mode
	url      string
	title    string
	tree     *dom.Node
	page     *document.Page
	selected int // link index, >= 1
	scroll   int
	pageSize int
	status   string

	number  []rune // link number typed while browsing
	address *lineedit.Editor
}

// New creates a navigator showing an empty page.
func New(loader Loader, opts Options, log *slog.Logger) *Navigator {
	return &Navigator{
		loader:   loader,
		opts:     opts,
		log:      log,
		page:     document.Flatten(nil),
		selected: 1,
		pageSize: max(1, opts.PageSize),
		address:  lineedit.New(),
	}
}

func (n *Navigator) Mode() Mode           { return n.mode }
func (n *Navigator) URL() string          { return n.url }
func (n *Navigator) Tree() *dom.Node      { return n.tree }
func (n *Navigator) Page() *document.Page { return n.page }
func (n *Navigator) Selected() int        { return n.selected }
func (n *Navigator) Scroll() int          { return n.scroll }
func (n *Navigator) PageSize() int        { return n.pageSize }
func (n *Navigator) Status() string       { return n.status }
func (n *Navigator) Address() string      { return n.address.Text() }

// Title returns the page title, or DefaultTitle when it has none.
func (n *Navigator) Title() string {
	if n.title == "" {
		return DefaultTitle
	}
	return n.title
}

// Show installs a document without loading it.
func (n *Navigator) Show(url, title string, tree *dom.Node) {
	n.install(url, title, tree)
	n.status = ""
}

// SetStatus replaces the status message.
func (n *Navigator) SetStatus(msg string) { n.status = msg }

// Open validates and loads url. Unlike Handle it returns the failure so
// callers can treat a bad start page as fatal.
func (n *Navigator) Open(ctx context.Context, url string) error {
	return n.follow(ctx, url)
}

// SetPageSize sets the number of visible lines and keeps the selection on
// screen.
func (n *Navigator) SetPageSize(size int) {
	n.pageSize = max(1, size)
	n.reveal()
}

// Handle applies one input event. Load failures never escape; they become
// the status message.
func (n *Navigator) Handle(ctx context.Context, ev Event) {
	if ev.Kind == EventQuit {
		n.mode = Terminated
		return
	}
	switch n.mode {
	case Browsing:
		n.handleBrowsing(ctx, ev)
	case Searching:
		n.handleSearching(ctx, ev)
	}
	n.reveal()
}

func (n *Navigator) handleBrowsing(ctx context.Context, ev Event) {
	if len(n.number) > 0 && ev.Kind != EventText && ev.Kind != EventBackspace && ev.Kind != EventActivate {
		n.number = n.number[:0]
		n.status = ""
	}

	links := n.page.Links
	switch ev.Kind {
	case EventUp:
		if n.selected > 1 {
			n.selected--
		}
	case EventDown:
		if n.selected < links.MaxIndex() {
			n.selected++
		}
	case EventPageDown:
		n.pageDown()
	case EventPageUp:
		n.pageUp()
	case EventTop:
		n.selected = 1
		if links.MaxIndex() == 0 {
			n.scroll = 0
		}
	case EventBottom:
		n.selected = max(1, links.MaxIndex())
		if links.MaxIndex() == 0 {
			n.scroll = n.lastOffset()
		}
	case EventLeft, EventRight:
		n.status = msgNotApplicable
	case EventActivate:
		if len(n.number) > 0 {
			n.followNumber(ctx)
			return
		}
		n.activate(ctx)
	case EventSearch:
		n.mode = Searching
		n.address.Clear()
		n.status = ""
	case EventReload:
		n.reload(ctx)
	case EventText:
		n.typeNumber(ev.Rune)
	case EventBackspace:
		if len(n.number) > 0 {
			n.number = n.number[:len(n.number)-1]
			n.status = numberStatus(n.number)
		}
	case EventCancel:
		n.status = ""
	}
}

func (n *Navigator) handleSearching(ctx context.Context, ev Event) {
	a := n.address
	switch ev.Kind {
	case EventText:
		a.Insert(ev.Rune)
	case EventBackspace:
		a.DeleteBackward()
	case EventDelete:
		a.DeleteForward()
	case EventDeleteWord:
		a.DeleteWordBackward()
	case EventKillLine:
		a.KillToStart()
	case EventUndo:
		a.Undo()
	case EventLeft:
		a.Left()
	case EventRight:
		a.Right()
	case EventTop:
		a.Home()
	case EventBottom:
		a.End()
	case EventCancel:
		a.Clear()
		n.mode = Browsing
	case EventActivate:
		addr := strings.TrimSpace(a.Text())
		a.Clear()
		n.mode = Browsing
		_ = n.follow(ctx, addr)
	}
}

// typeNumber accumulates digits of a link number to follow on Activate.
func (n *Navigator) typeNumber(r rune) {
	if r < '0' || r > '9' || (r == '0' && len(n.number) == 0) {
		return
	}
	n.number = append(n.number, r)
	n.status = numberStatus(n.number)
}

func numberStatus(number []rune) string {
	if len(number) == 0 {
		return ""
	}
	return "Follow link: " + string(number)
}

func (n *Navigator) followNumber(ctx context.Context) {
	index, err := strconv.Atoi(string(n.number))
	n.number = n.number[:0]
	if err != nil {
		n.status = msgNotReachable
		return
	}
	href, ok := n.page.Links.HrefOf(index)
	if !ok {
		n.status = msgNotReachable
		return
	}
	_ = n.follow(ctx, href)
}

// activate follows the selected link. The href is resolved through its line
// so a selection that does not sit on a link line is never followed.
func (n *Navigator) activate(ctx context.Context) {
	links := n.page.Links
	line, ok := links.LineOf(n.selected)
	if !ok {
		n.status = msgNotReachable
		return
	}
	index, ok := links.LinkAtLine(line)
	if !ok {
		n.status = msgNotReachable
		return
	}
	href, _ := links.HrefOf(index)
	_ = n.follow(ctx, href)
}

func (n *Navigator) reload(ctx context.Context) {
	if !urlcheck.IsEligible(n.url) {
		n.status = msgNothingToReload
		return
	}
	_ = n.load(ctx, n.url)
}

// follow validates href and loads it.
func (n *Navigator) follow(ctx context.Context, href string) error {
	if err := urlcheck.Check(href); err != nil {
		n.status = fmt.Sprintf("Skipped navigation to invalid or unsupported URL: %q", href)
		n.log.Info("navigation skipped", "href", href, "reason", err)
		return err
	}
	return n.load(ctx, strings.TrimSpace(href))
}

// load requests url from the loader. On failure nothing but the status
// changes.
func (n *Navigator) load(ctx context.Context, url string) error {
	if n.opts.OnLoad != nil {
		n.opts.OnLoad(url)
	}
	n.log.Info("navigating", "url", url)

	start := time.Now()
	res, err := n.loader.Load(ctx, url, n.opts.Timeout)
	if err == nil && res == nil {
		err = &fetcher.Error{Kind: fetcher.KindNoResponse, URL: url, Detail: "no response from " + url}
	}
	if err != nil {
		fe := fetcher.Classify(url, err)
		n.status = "Navigation failed: " + fe.Detail
		n.log.Warn("navigation failed", "url", url, "kind", fe.Kind, "error", err)
		return fe
	}

	finalURL := res.URL
	if finalURL == "" {
		finalURL = url
	}
	n.install(finalURL, res.Title, res.Tree)
	n.status = "Navigated to: " + url
	n.log.Info("navigated",
		"url", finalURL,
		"status", res.Status,
		"lines", n.page.Len(),
		"links", n.page.Links.MaxIndex(),
		"elapsed", time.Since(start))
	return nil
}

// install replaces the current page and resets the cursor.
func (n *Navigator) install(url, title string, tree *dom.Node) {
	n.url = url
	n.title = title
	n.tree = tree
	n.page = document.Flatten(tree)
	n.selected = 1
	n.scroll = 0
	n.number = n.number[:0]
	n.clampSelection()
	n.reveal()
}

func (n *Navigator) clampSelection() {
	n.selected = max(1, min(n.selected, max(1, n.page.Links.MaxIndex())))
}

func (n *Navigator) selectedLine() int {
	line, ok := n.page.Links.LineOf(n.selected)
	if !ok {
		return -1
	}
	return line
}

func (n *Navigator) lastOffset() int {
	return max(0, n.page.Len()-n.pageSize)
}

func (n *Navigator) reveal() {
	w := viewport.ComputeWindow(n.page.Len(), n.pageSize, n.selectedLine(), n.scroll)
	n.scroll = w.Offset
}

// pageDown selects the first link at least one page below the current one.
// Pages without links scroll instead.
func (n *Navigator) pageDown() {
	links := n.page.Links
	if links.MaxIndex() == 0 {
		n.scroll = min(n.scroll+n.pageSize, n.lastOffset())
		return
	}
	if index, ok := links.FirstAtOrAfter(n.selectedLine() + n.pageSize); ok {
		n.selected = index
		return
	}
	n.selected = links.MaxIndex()
}

// pageUp selects the last link at least one page above the current one.
func (n *Navigator) pageUp() {
	links := n.page.Links
	if links.MaxIndex() == 0 {
		n.scroll = max(0, n.scroll-n.pageSize)
		return
	}
	if index, ok := links.LastAtOrBefore(n.selectedLine() - n.pageSize); ok {
		n.selected = index
		return
	}
	n.selected = 1
}

// View is a snapshot of what should be on screen.
type View struct {
	Mode   Mode
	Title  string
	URL    string
	Status string

	Lines        []document.DisplayLine // visible window
	Window       viewport.Window
	SelectedLine int // index into Lines, -1 when nothing is highlighted
	Selected     int
	MaxIndex     int

	Address string
	Cursor  int
}

// View returns the current presentation state.
func (n *Navigator) View() View {
	w := viewport.ComputeWindow(n.page.Len(), n.pageSize, n.selectedLine(), n.scroll)
	v := View{
		Mode:         n.mode,
		Title:        n.Title(),
		URL:          n.url,
		Status:       n.status,
		Lines:        n.page.Lines[w.Start:w.End],
		Window:       w,
		SelectedLine: -1,
		Selected:     n.selected,
		MaxIndex:     n.page.Links.MaxIndex(),
		Address:      n.address.Text(),
		Cursor:       n.address.Cursor(),
	}
	if w.Selected >= 0 && w.Contains(w.Selected) {
		v.SelectedLine = w.Selected - w.Start
	}
	return v
}
