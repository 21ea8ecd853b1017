// Package config provides configuration loading for linkwalk using TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Start page settings
type Start struct {
	URL     string `toml:"url"`     // loaded at startup when no url argument is given
	Welcome string `toml:"welcome"` // Markdown file replacing the built-in welcome page
	Resume  bool   `toml:"resume"`  // reopen the last visited page when no url is given
}

// Page acquisition settings
type Fetcher struct {
	Mode           string `toml:"mode"` // "browser" or "http"
	UserAgent      string `toml:"userAgent"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
	ChromePath     string `toml:"chromePath"`
	Headless       bool   `toml:"headless"`
}

// Timeout returns the page load timeout.
func (f Fetcher) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Display settings
type Display struct {
	ChromeLines int  `toml:"chromeLines"` // rows reserved for title and status bars
	ShowURL     bool `toml:"showUrl"`
	IndentWidth int  `toml:"indentWidth"` // spaces per nesting level
}

// Log settings
type Log struct {
	Path  string `toml:"path"` // empty or "-" discards logs
	Level string `toml:"level"`
}

// Keybindings configuration. Each binding is one key or a two-key sequence
// such as "gg". Arrow keys, Enter, Escape and Ctrl-C are always bound.
type Keybindings struct {
	Quit     string `toml:"quit"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Left     string `toml:"left"`
	Right    string `toml:"right"`
	Activate string `toml:"activate"`
	Search   string `toml:"search"`
	PageDown string `toml:"pageDown"`
	PageUp   string `toml:"pageUp"`
	Top      string `toml:"top"`
	Bottom   string `toml:"bottom"`
	Reload   string `toml:"reload"`
}

// Named returns the bindings keyed by action name, in a stable order.
func (k Keybindings) Named() []NamedBinding {
	return []NamedBinding{
		{"quit", k.Quit},
		{"up", k.Up},
		{"down", k.Down},
		{"left", k.Left},
		{"right", k.Right},
		{"activate", k.Activate},
		{"search", k.Search},
		{"pageDown", k.PageDown},
		{"pageUp", k.PageUp},
		{"top", k.Top},
		{"bottom", k.Bottom},
		{"reload", k.Reload},
	}
}

// NamedBinding is one action and its keys.
type NamedBinding struct {
	Action string
	Keys   string
}

// Config is the main configuration struct
type Config struct {
	Start       Start       `toml:"start"`
	Fetcher     Fetcher     `toml:"fetcher"`
	Display     Display     `toml:"display"`
	Log         Log         `toml:"log"`
	Keybindings Keybindings `toml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Fetcher: Fetcher{
			Mode:           "browser",
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			TimeoutSeconds: 30,
			ChromePath:     "",
			Headless:       true,
		},
		Display: Display{
			ChromeLines: 2,
			ShowURL:     true,
			IndentWidth: 1,
		},
		Log: Log{
			Path:  defaultLogPath(),
			Level: "info",
		},
		Keybindings: Keybindings{
			Quit:     "q",
			Up:       "k",
			Down:     "j",
			Left:     "h",
			Right:    "l",
			Activate: "f",
			Search:   "o",
			PageDown: "d",
			PageUp:   "u",
			Top:      "gg",
			Bottom:   "G",
			Reload:   "r",
		},
	}
}

// defaultLogPath returns $XDG_CACHE_HOME/linkwalk/linkwalk.log, or "" when
// no cache directory is known.
func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "linkwalk", "linkwalk.log")
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "linkwalk"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering the user config on top of defaults.
// With an empty path the default location is used, and a missing file there
// yields the defaults. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}

	userCfg, md, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	result := merge(cfg, userCfg, md)
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return result, nil
}

// loadFromTOML loads a TOML config file and returns the config and its
// metadata.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, md, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults. Strings and numbers override
// when non-zero; booleans override when the key is present in the file.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults

	// Start
	mergeString(&result.Start.URL, user.Start.URL)
	mergeString(&result.Start.Welcome, user.Start.Welcome)
	if md.IsDefined("start", "resume") {
		result.Start.Resume = user.Start.Resume
	}

	// Fetcher
	mergeString(&result.Fetcher.Mode, user.Fetcher.Mode)
	mergeString(&result.Fetcher.UserAgent, user.Fetcher.UserAgent)
	if user.Fetcher.TimeoutSeconds != 0 {
		result.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}
	mergeString(&result.Fetcher.ChromePath, user.Fetcher.ChromePath)
	if md.IsDefined("fetcher", "headless") {
		result.Fetcher.Headless = user.Fetcher.Headless
	}

	// Display
	if user.Display.ChromeLines != 0 {
		result.Display.ChromeLines = user.Display.ChromeLines
	}
	if md.IsDefined("display", "showUrl") {
		result.Display.ShowURL = user.Display.ShowURL
	}
	if md.IsDefined("display", "indentWidth") {
		result.Display.IndentWidth = user.Display.IndentWidth
	}

	// Log - an explicit empty path disables logging
	if md.IsDefined("log", "path") {
		result.Log.Path = user.Log.Path
	}
	mergeString(&result.Log.Level, user.Log.Level)

	// Keybindings - override each if set
	mergeString(&result.Keybindings.Quit, user.Keybindings.Quit)
	mergeString(&result.Keybindings.Up, user.Keybindings.Up)
	mergeString(&result.Keybindings.Down, user.Keybindings.Down)
	mergeString(&result.Keybindings.Left, user.Keybindings.Left)
	mergeString(&result.Keybindings.Right, user.Keybindings.Right)
	mergeString(&result.Keybindings.Activate, user.Keybindings.Activate)
	mergeString(&result.Keybindings.Search, user.Keybindings.Search)
	mergeString(&result.Keybindings.PageDown, user.Keybindings.PageDown)
	mergeString(&result.Keybindings.PageUp, user.Keybindings.PageUp)
	mergeString(&result.Keybindings.Top, user.Keybindings.Top)
	mergeString(&result.Keybindings.Bottom, user.Keybindings.Bottom)
	mergeString(&result.Keybindings.Reload, user.Keybindings.Reload)

	return &result
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error

	switch c.Fetcher.Mode {
	case "browser", "http":
	default:
		errs = append(errs, fmt.Errorf("fetcher.mode: unknown mode %q (want \"browser\" or \"http\")", c.Fetcher.Mode))
	}
	if c.Fetcher.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("fetcher.timeoutSeconds: must be positive, got %d", c.Fetcher.TimeoutSeconds))
	}
	if c.Display.ChromeLines < 2 {
		errs = append(errs, fmt.Errorf("display.chromeLines: must be at least 2, got %d", c.Display.ChromeLines))
	}
	if c.Display.IndentWidth < 0 {
		errs = append(errs, fmt.Errorf("display.indentWidth: must not be negative, got %d", c.Display.IndentWidth))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	errs = append(errs, validateKeybindings(c.Keybindings)...)
	return errors.Join(errs...)
}

func validateKeybindings(kb Keybindings) []error {
	var errs []error
	seen := make(map[string]string)
	named := kb.Named()

	for _, b := range named {
		switch {
		case b.Keys == "":
			errs = append(errs, fmt.Errorf("keybindings.%s: empty", b.Action))
			continue
		case len(b.Keys) > 2:
			errs = append(errs, fmt.Errorf("keybindings.%s: %q is longer than two keys", b.Action, b.Keys))
			continue
		case strings.ContainsAny(b.Keys, "0123456789"):
			errs = append(errs, fmt.Errorf("keybindings.%s: digits are reserved for link numbers", b.Action))
			continue
		}
		for i := 0; i < len(b.Keys); i++ {
			if b.Keys[i] >= 0x7f || b.Keys[i] == 0x1b || b.Keys[i] == '\r' || b.Keys[i] == '\n' || b.Keys[i] == 0x03 {
				errs = append(errs, fmt.Errorf("keybindings.%s: %q uses a reserved or non-ASCII key", b.Action, b.Keys))
				break
			}
		}
		if other, ok := seen[b.Keys]; ok {
			errs = append(errs, fmt.Errorf("keybindings.%s: %q already bound to %s", b.Action, b.Keys, other))
			continue
		}
		seen[b.Keys] = b.Action
	}

	// A single key that starts a two-key sequence would shadow it.
	for _, single := range named {
		if len(single.Keys) != 1 {
			continue
		}
		for _, seq := range named {
			if StartsBinding(single.Keys[0], seq.Keys) {
				errs = append(errs, fmt.Errorf("keybindings.%s: %q shadows %s %q", single.Action, single.Keys, seq.Action, seq.Keys))
			}
		}
	}
	return errs
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# linkwalk configuration
# Save to ~/.config/linkwalk/config.toml and customize
# Only include settings you want to change from defaults

# Start page
[start]
url = ""                      # Page to open when no url is given (empty = welcome page)
welcome = ""                  # Markdown file replacing the built-in welcome page
resume = false                # Reopen the last visited page when no url is given

# Page loading
[fetcher]
mode = "browser"              # "browser" (headless Chrome) or "http" (no JavaScript)
userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
timeoutSeconds = 30
chromePath = ""               # Path to Chrome/Chromium (empty = auto-detect)
headless = true

# Display settings
[display]
chromeLines = 2               # Rows reserved for title and status bars
showUrl = true                # Show URL in the title bar
indentWidth = 1               # Spaces per nesting level

# Logging (the terminal belongs to the UI, so logs go to a file)
[log]
path = "~/.cache/linkwalk/linkwalk.log"   # "" or "-" disables logging
level = "info"                # debug, info, warn, error

# Keybindings - one key or a two-key sequence.
# Arrow keys, Enter (activate), Escape (cancel) and Ctrl-C (quit) always work.
# Digits are reserved: type a link number and press Enter to follow it.
[keybindings]
quit = "q"
up = "k"
down = "j"
left = "h"
right = "l"
activate = "f"
search = "o"                  # Open the address prompt
pageDown = "d"
pageUp = "u"
top = "gg"
bottom = "G"
reload = "r"
`
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// MatchSingle is a simple helper for single-char bindings.
func MatchSingle(input byte, binding string) bool {
	return len(binding) == 1 && input == binding[0]
}

// MatchWithPrefix checks if input completes a two-char binding given a prefix.
func MatchWithPrefix(prefix byte, input byte, binding string) bool {
	return len(binding) == 2 && prefix == binding[0] && input == binding[1]
}

// StartsBinding returns true if input is the first char of a multi-char binding.
func StartsBinding(input byte, binding string) bool {
	return len(binding) > 1 && input == binding[0]
}
