package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "browser", cfg.Fetcher.Mode)
	assert.Equal(t, 30*time.Second, cfg.Fetcher.Timeout())
	assert.True(t, cfg.Fetcher.Headless)
	assert.Equal(t, 2, cfg.Display.ChromeLines)
}

func TestDefaultTOMLMatchesDefault(t *testing.T) {
	var parsed Config
	md, err := toml.Decode(DefaultTOML(), &parsed)
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded())

	want := Default()
	assert.Equal(t, want.Fetcher, parsed.Fetcher)
	assert.Equal(t, want.Display, parsed.Display)
	assert.Equal(t, want.Keybindings, parsed.Keybindings)
	assert.Equal(t, want.Log.Level, parsed.Log.Level)
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMerges(t *testing.T) {
	path := writeConfig(t, `
[start]
url = "https://example.com"
resume = true

[fetcher]
mode = "http"
timeoutSeconds = 5
headless = false

[display]
showUrl = false
indentWidth = 0

[log]
path = ""
level = "debug"

[keybindings]
quit = "x"
top = "t"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Start.URL)
	assert.True(t, cfg.Start.Resume)
	assert.Equal(t, "http", cfg.Fetcher.Mode)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.Timeout())
	assert.False(t, cfg.Fetcher.Headless, "explicit false overrides default")
	assert.Equal(t, Default().Fetcher.UserAgent, cfg.Fetcher.UserAgent)
	assert.False(t, cfg.Display.ShowURL)
	assert.Equal(t, 0, cfg.Display.IndentWidth)
	assert.Equal(t, 2, cfg.Display.ChromeLines)
	assert.Empty(t, cfg.Log.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "x", cfg.Keybindings.Quit)
	assert.Equal(t, "t", cfg.Keybindings.Top)
	assert.Equal(t, "j", cfg.Keybindings.Down)
}

func TestLoadOmittedBooleansKeepDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[fetcher]\nmode = \"http\"\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Fetcher.Headless)
	assert.False(t, cfg.Start.Resume)
	assert.True(t, cfg.Display.ShowURL)
	assert.Equal(t, 1, cfg.Display.IndentWidth)
	assert.Equal(t, Default().Log.Path, cfg.Log.Path)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[fetcher\nmode = 1"},
		{"unknown key", "[fetcher]\nmodee = \"http\"\n"},
		{"bad mode", "[fetcher]\nmode = \"gopher\"\n"},
		{"negative timeout", "[fetcher]\ntimeoutSeconds = -1\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"duplicate key", "[keybindings]\nup = \"j\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateKeybindings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Keybindings)
		ok     bool
	}{
		{"defaults", func(*Keybindings) {}, true},
		{"empty", func(k *Keybindings) { k.Quit = "" }, false},
		{"duplicate", func(k *Keybindings) { k.Up = "j" }, false},
		{"too long", func(k *Keybindings) { k.Top = "ggg" }, false},
		{"digit", func(k *Keybindings) { k.Reload = "1" }, false},
		{"escape", func(k *Keybindings) { k.Search = "\x1b" }, false},
		{"shadowed sequence", func(k *Keybindings) { k.Reload = "g" }, false},
		{"control key", func(k *Keybindings) { k.Search = "\x0c" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Keybindings)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMatchHelpers(t *testing.T) {
	assert.True(t, MatchSingle('q', "q"))
	assert.False(t, MatchSingle('q', "qq"))
	assert.True(t, MatchWithPrefix('g', 'g', "gg"))
	assert.False(t, MatchWithPrefix('g', 'G', "gg"))
	assert.True(t, StartsBinding('g', "gg"))
	assert.False(t, StartsBinding('g', "g"))
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/x.log", ExpandHome("~/x.log"))
	assert.Equal(t, "/var/x.log", ExpandHome("/var/x.log"))
}
