// linkwalk is a terminal hypertext navigator: it shows a web page as an
// outline of headings, paragraphs and numbered links and follows links from
// the keyboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"linkwalk/config"
	"linkwalk/document"
	"linkwalk/fetcher"
	"linkwalk/input"
	"linkwalk/nav"
	"linkwalk/render"
	"linkwalk/session"
	"linkwalk/welcome"
)

// options are the parsed command line arguments.
type options struct {
	url        string
	printMode  bool
	initConfig bool
	configPath string
	help       bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}
	if opts.help {
		printUsage()
		return
	}

	// Generate default config and exit
	if opts.initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	if err := start(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-p" || arg == "--print":
			opts.printMode = true
		case arg == "--init-config":
			opts.initConfig = true
		case arg == "-h" || arg == "--help":
			opts.help = true
		case arg == "--config":
			if i+1 >= len(args) {
				return opts, errors.New("--config needs a path")
			}
			i++
			opts.configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown option %s", arg)
		default:
			if opts.url != "" {
				return opts, fmt.Errorf("unexpected argument %s", arg)
			}
			opts.url = arg
		}
	}
	return opts, nil
}

func printUsage() {
	fmt.Println(`linkwalk - Terminal Hypertext Navigator

Usage: linkwalk [options] [url]

Options:
  -p, --print        Print the page outline to stdout (one-shot mode)
  --config <path>    Use this config file instead of ~/.config/linkwalk/config.toml
  --init-config      Output default config (redirect to ~/.config/linkwalk/config.toml)
  -h, --help         Show this help

Examples:
  linkwalk                          Open the welcome page
  linkwalk https://example.com      Open URL
  linkwalk -p https://example.com   Print page outline to stdout
  linkwalk --init-config > ~/.config/linkwalk/config.toml`)
}

// start loads configuration and logging, then runs the interactive loop or
// print mode.
func start(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	sessionPath, err := session.Path()
	if err != nil {
		log.Warn("no session path", "error", err)
	}
	first := startPage(opts.url, cfg, sessionPath, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	log.Info("starting", "url", first.url, "resumed", first.resumed, "print", opts.printMode || !interactive, "mode", cfg.Fetcher.Mode)

	if opts.printMode || !interactive {
		return runPrint(ctx, cfg, first, log, os.Stdout)
	}
	return run(ctx, cfg, first, sessionPath, log)
}

// page is where a run begins.
type page struct {
	url     string
	resumed bool // url came from the previous session
}

// startPage picks the first page: the url argument, then the page the last
// session ended on when resume is enabled, then the configured start url.
// An empty url means the welcome page.
func startPage(arg string, cfg *config.Config, sessionPath string, log *slog.Logger) page {
	if arg != "" {
		return page{url: arg}
	}
	if cfg.Start.Resume && sessionPath != "" {
		s, err := session.Load(sessionPath)
		if err != nil {
			log.Warn("loading session", "path", sessionPath, "error", err)
		} else if s.URL != "" {
			return page{url: s.URL, resumed: true}
		}
	}
	return page{url: cfg.Start.URL}
}

// newLogger opens the log file named by cfg. Every record carries the
// session id of this run.
func newLogger(cfg config.Log) (*slog.Logger, func() error, error) {
	id := uuid.NewString()
	path := config.ExpandHome(cfg.Path)
	if path == "" || path == "-" {
		return slog.New(slog.DiscardHandler).With("session", id), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(handler).With("session", id), f.Close, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func fetcherOptions(cfg *config.Config) fetcher.Options {
	return fetcher.Options{
		Mode:       cfg.Fetcher.Mode,
		UserAgent:  cfg.Fetcher.UserAgent,
		Timeout:    cfg.Fetcher.Timeout(),
		ChromePath: cfg.Fetcher.ChromePath,
		Headless:   cfg.Fetcher.Headless,
	}
}

// openStart shows the welcome page when the url is empty and loads it
// otherwise. A resumed page that no longer loads falls back to the welcome
// page.
func openStart(ctx context.Context, n *nav.Navigator, start page, cfg *config.Config, log *slog.Logger) error {
	if start.url != "" {
		err := n.Open(ctx, start.url)
		if err == nil {
			return nil
		}
		if !start.resumed {
			return fmt.Errorf("opening %s: %w", start.url, err)
		}
		log.Warn("resumed page failed to load", "url", start.url, "error", err)
	}

	tree, err := welcome.Load(cfg.Start.Welcome)
	if err != nil {
		return err
	}
	status := n.Status()
	n.Show("", welcome.Title, tree)
	if start.resumed {
		n.SetStatus(status)
	}
	return nil
}

// saveSession records the page the run ended on.
func saveSession(path string, n *nav.Navigator, log *slog.Logger) {
	if path == "" || n.URL() == "" {
		return
	}
	s := &session.State{URL: n.URL(), Title: n.Title(), SavedAt: time.Now()}
	if err := session.Save(path, s); err != nil {
		log.Warn("saving session", "path", path, "error", err)
	}
}

func runPrint(ctx context.Context, cfg *config.Config, start page, log *slog.Logger, out io.Writer) error {
	loader, err := fetcher.New(fetcherOptions(cfg), log)
	if err != nil {
		return err
	}
	defer loader.Close()

	n := nav.New(loader, nav.Options{Timeout: cfg.Fetcher.Timeout(), PageSize: 1}, log)
	if err := openStart(ctx, n, start, cfg, log); err != nil {
		return err
	}

	_, err = io.WriteString(out, document.Plain(n.Page(), cfg.Display.IndentWidth))
	return err
}

func run(ctx context.Context, cfg *config.Config, start page, sessionPath string, log *slog.Logger) error {
	loader, err := fetcher.New(fetcherOptions(cfg), log)
	if err != nil {
		return err
	}
	defer loader.Close()

	// Set up terminal
	screen, err := render.OpenScreen(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Close()

	canvas, _ := screen.Canvas()
	renderer := document.NewRenderer(canvas, cfg.Display.IndentWidth)
	loading := render.NewLoadingDisplay(render.SpinnerBraille)

	n := nav.New(loader, nav.Options{
		Timeout:  cfg.Fetcher.Timeout(),
		PageSize: canvas.Height() - cfg.Display.ChromeLines,
		OnLoad: func(url string) {
			loading.DrawBox(renderer.Canvas(), "Loading", url)
			screen.Present()
		},
	}, log)

	if err := openStart(ctx, n, start, cfg, log); err != nil {
		return err
	}
	if cfg.Start.Resume {
		defer saveSession(sessionPath, n, log)
	}

	decoder := input.NewDecoder(screen.Input(), cfg.Keybindings)
	for n.Mode() != nav.Terminated {
		// Pick up terminal resizes before each frame.
		if c, resized := screen.Canvas(); resized {
			renderer = document.NewRenderer(c, cfg.Display.IndentWidth)
			log.Debug("resized", "width", c.Width(), "height", c.Height())
		}
		n.SetPageSize(renderer.Canvas().Height() - cfg.Display.ChromeLines)

		renderer.Render(frameFor(n.View(), cfg.Display))
		if err := screen.Present(); err != nil {
			return fmt.Errorf("drawing: %w", err)
		}

		ev, err := decoder.Next(n.Mode())
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		log.Debug("event", "event", ev.String(), "mode", n.Mode().String())
		n.Handle(ctx, ev)
	}
	log.Info("session ended", "url", n.URL())
	return nil
}

// frameFor converts the navigator's view into what the renderer draws.
func frameFor(v nav.View, display config.Display) document.Frame {
	f := document.Frame{
		Title:    v.Title,
		Lines:    v.Lines,
		Selected: v.SelectedLine,
		Status:   v.Status,
		Info:     "no links",
	}
	if display.ShowURL {
		f.URL = v.URL
	}
	if v.MaxIndex > 0 {
		f.Info = fmt.Sprintf("link %d/%d", v.Selected, v.MaxIndex)
	}
	if v.Mode == nav.Searching {
		f.Prompting = true
		f.Prompt = "Go to: "
		f.Address = v.Address
		f.Cursor = v.Cursor
	}
	return f
}
