package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkwalk/config"
	"linkwalk/nav"
)

// chunkReader returns one chunk per Read call.
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func decodeAll(t *testing.T, mode nav.Mode, input ...string) []nav.Event {
	t.Helper()
	d := NewDecoder(&chunkReader{chunks: input}, config.Default().Keybindings)
	var events []nav.Event
	for {
		ev, err := d.Next(mode)
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func keys(kinds ...nav.EventKind) []nav.Event {
	events := make([]nav.Event, len(kinds))
	for i, k := range kinds {
		events[i] = nav.Key(k)
	}
	return events
}

func TestBrowsingKeymap(t *testing.T) {
	got := decodeAll(t, nav.Browsing, "kjhlfoqdurG")
	assert.Equal(t, keys(
		nav.EventUp, nav.EventDown, nav.EventLeft, nav.EventRight,
		nav.EventActivate, nav.EventSearch, nav.EventQuit,
		nav.EventPageDown, nav.EventPageUp, nav.EventReload, nav.EventBottom,
	), got)
}

func TestBrowsingArrowsAndSpecialKeys(t *testing.T) {
	got := decodeAll(t, nav.Browsing, "\x1b[A\x1b[B\x1bOC\x1bOD\r\n\x1b[5~\x1b[6~\x1b[H\x1b[F\x03")
	assert.Equal(t, keys(
		nav.EventUp, nav.EventDown, nav.EventRight, nav.EventLeft,
		nav.EventActivate, nav.EventActivate,
		nav.EventPageUp, nav.EventPageDown, nav.EventTop, nav.EventBottom,
		nav.EventQuit,
	), got)
}

func TestLoneEscapeIsCancel(t *testing.T) {
	assert.Equal(t, keys(nav.EventCancel), decodeAll(t, nav.Browsing, "\x1b"))
	assert.Equal(t, keys(nav.EventCancel, nav.EventDown), decodeAll(t, nav.Browsing, "\x1b", "j"))
}

func TestUnknownSequencesAreSkipped(t *testing.T) {
	got := decodeAll(t, nav.Browsing, "\x1b[1;5Az", "j")
	assert.Equal(t, keys(nav.EventDown), got)
}

func TestTwoKeyBinding(t *testing.T) {
	assert.Equal(t, keys(nav.EventTop), decodeAll(t, nav.Browsing, "gg"))
	assert.Equal(t, keys(nav.EventTop), decodeAll(t, nav.Browsing, "g", "g"))
	// A broken sequence falls through to the second key's own binding.
	assert.Equal(t, keys(nav.EventDown), decodeAll(t, nav.Browsing, "gj"))
}

func TestDigitsAreText(t *testing.T) {
	got := decodeAll(t, nav.Browsing, "12\r")
	assert.Equal(t, []nav.Event{nav.Text('1'), nav.Text('2'), nav.Key(nav.EventActivate)}, got)
}

func TestSearchingIsLiteral(t *testing.T) {
	got := decodeAll(t, nav.Searching, "qj/ü", "\x7f\x1b[D\r")
	assert.Equal(t, []nav.Event{
		nav.Text('q'), nav.Text('j'), nav.Text('/'), nav.Text('ü'),
		nav.Key(nav.EventBackspace), nav.Key(nav.EventLeft), nav.Key(nav.EventActivate),
	}, got)
}

func TestSearchingSplitRune(t *testing.T) {
	s := "é"
	got := decodeAll(t, nav.Searching, s[:1], s[1:])
	assert.Equal(t, []nav.Event{nav.Text('é')}, got)
}

func TestSearchingEditKeys(t *testing.T) {
	got := decodeAll(t, nav.Searching, "\x01\x05\x02\x06\x04\x15\x17\x1a\x1b\x7f\x1b[3~\x1b")
	assert.Equal(t, keys(
		nav.EventTop, nav.EventBottom, nav.EventLeft, nav.EventRight,
		nav.EventDelete, nav.EventKillLine, nav.EventDeleteWord, nav.EventUndo,
		nav.EventDeleteWord, nav.EventDelete, nav.EventCancel,
	), got)
}

func TestCustomKeymap(t *testing.T) {
	kb := config.Default().Keybindings
	kb.Quit = "x"
	kb.Search = "\x0c"
	d := NewDecoder(strings.NewReader("q\x0cx"), kb)

	ev, err := d.Next(nav.Browsing)
	require.NoError(t, err)
	assert.Equal(t, nav.EventSearch, ev.Kind, "q is unbound and skipped")

	ev, err = d.Next(nav.Browsing)
	require.NoError(t, err)
	assert.Equal(t, nav.EventQuit, ev.Kind)
}

func TestModeSwitchMidBuffer(t *testing.T) {
	d := NewDecoder(strings.NewReader("oab\rj"), config.Default().Keybindings)

	ev, _ := d.Next(nav.Browsing)
	require.Equal(t, nav.EventSearch, ev.Kind)

	var typed []rune
	for {
		ev, err := d.Next(nav.Searching)
		require.NoError(t, err)
		if ev.Kind == nav.EventActivate {
			break
		}
		typed = append(typed, ev.Rune)
	}
	assert.Equal(t, "ab", string(typed))

	ev, _ = d.Next(nav.Browsing)
	assert.Equal(t, nav.EventDown, ev.Kind)
}
