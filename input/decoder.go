// Package input turns raw terminal bytes into navigation events.
package input

import (
	"io"
	"unicode"
	"unicode/utf8"

	"linkwalk/config"
	"linkwalk/nav"
)

type binding struct {
	keys string
	kind nav.EventKind
}

// Decoder reads key presses from a raw-mode terminal. Escape sequences for
// arrows and paging keys are decoded the same way for every mode; letters are
// looked up in the keymap while browsing and taken literally while searching.
type Decoder struct {
	r        io.Reader
	buf      []byte
	pending  byte // first key of a two-key binding
	bindings []binding
}

// NewDecoder creates a decoder reading from r with the given keymap.
func NewDecoder(r io.Reader, kb config.Keybindings) *Decoder {
	return &Decoder{
		r: r,
		bindings: []binding{
			{kb.Quit, nav.EventQuit},
			{kb.Up, nav.EventUp},
			{kb.Down, nav.EventDown},
			{kb.Left, nav.EventLeft},
			{kb.Right, nav.EventRight},
			{kb.Activate, nav.EventActivate},
			{kb.Search, nav.EventSearch},
			{kb.PageDown, nav.EventPageDown},
			{kb.PageUp, nav.EventPageUp},
			{kb.Top, nav.EventTop},
			{kb.Bottom, nav.EventBottom},
			{kb.Reload, nav.EventReload},
		},
	}
}

// Next blocks until one event for mode is available. Unbound keys are
// skipped. The read error, typically io.EOF, is returned when input ends.
func (d *Decoder) Next(mode nav.Mode) (nav.Event, error) {
	for {
		for len(d.buf) > 0 {
			ev, n, ok := d.decode(mode)
			if n == 0 {
				break // incomplete sequence, read more
			}
			d.buf = d.buf[n:]
			if ok {
				return ev, nil
			}
		}
		if err := d.fill(); err != nil {
			return nav.Event{}, err
		}
	}
}

func (d *Decoder) fill() error {
	var tmp [64]byte
	n, err := d.r.Read(tmp[:])
	d.buf = append(d.buf, tmp[:n]...)
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// decode looks at the front of the buffer. It returns the event, the number
// of bytes consumed (0 when more input is needed), and whether the bytes
// produced an event.
func (d *Decoder) decode(mode nav.Mode) (nav.Event, int, bool) {
	b := d.buf
	switch b[0] {
	case 3: // Ctrl+C
		return nav.Key(nav.EventQuit), 1, true
	case 27:
		d.pending = 0
		return d.decodeEscape(mode)
	case 13, 10: // Enter
		d.pending = 0
		return nav.Key(nav.EventActivate), 1, true
	case 127, 8: // Backspace
		d.pending = 0
		return nav.Key(nav.EventBackspace), 1, true
	}

	if mode == nav.Searching {
		return d.decodeSearching()
	}
	return d.decodeBrowsing()
}

func (d *Decoder) decodeEscape(mode nav.Mode) (nav.Event, int, bool) {
	b := d.buf
	if len(b) == 1 {
		return nav.Key(nav.EventCancel), 1, true
	}

	if b[1] == '[' || b[1] == 'O' {
		if len(b) < 3 {
			return nav.Key(nav.EventCancel), 1, true
		}
		// Find the final byte of the sequence.
		end := 2
		for end < len(b) && !(b[end] >= 0x40 && b[end] <= 0x7e) {
			end++
		}
		if end == len(b) {
			return nav.Key(nav.EventCancel), 1, true
		}
		n := end + 1
		switch string(b[2:n]) {
		case "A":
			return nav.Key(nav.EventUp), n, true
		case "B":
			return nav.Key(nav.EventDown), n, true
		case "C":
			return nav.Key(nav.EventRight), n, true
		case "D":
			return nav.Key(nav.EventLeft), n, true
		case "H", "1~", "7~":
			return nav.Key(nav.EventTop), n, true
		case "F", "4~", "8~":
			return nav.Key(nav.EventBottom), n, true
		case "5~":
			return nav.Key(nav.EventPageUp), n, true
		case "6~":
			return nav.Key(nav.EventPageDown), n, true
		case "3~":
			return nav.Key(nav.EventDelete), n, true
		}
		return nav.Event{}, n, false
	}

	if mode == nav.Searching && (b[1] == 127 || b[1] == 8) { // Alt+Backspace
		return nav.Key(nav.EventDeleteWord), 2, true
	}
	return nav.Key(nav.EventCancel), 1, true
}

func (d *Decoder) decodeSearching() (nav.Event, int, bool) {
	b := d.buf
	switch b[0] {
	case 1: // Ctrl+A
		return nav.Key(nav.EventTop), 1, true
	case 5: // Ctrl+E
		return nav.Key(nav.EventBottom), 1, true
	case 2: // Ctrl+B
		return nav.Key(nav.EventLeft), 1, true
	case 6: // Ctrl+F
		return nav.Key(nav.EventRight), 1, true
	case 4: // Ctrl+D
		return nav.Key(nav.EventDelete), 1, true
	case 21: // Ctrl+U
		return nav.Key(nav.EventKillLine), 1, true
	case 23: // Ctrl+W
		return nav.Key(nav.EventDeleteWord), 1, true
	case 26, 31: // Ctrl+Z or Ctrl+_
		return nav.Key(nav.EventUndo), 1, true
	}

	if !utf8.FullRune(b) {
		return nav.Event{}, 0, false
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return nav.Event{}, size, false
	}
	return nav.Text(r), size, true
}

func (d *Decoder) decodeBrowsing() (nav.Event, int, bool) {
	c := d.buf[0]

	if d.pending != 0 {
		prefix := d.pending
		d.pending = 0
		for _, bind := range d.bindings {
			if config.MatchWithPrefix(prefix, c, bind.keys) {
				return nav.Key(bind.kind), 1, true
			}
		}
	}

	if c >= '0' && c <= '9' {
		return nav.Text(rune(c)), 1, true
	}
	for _, bind := range d.bindings {
		if config.MatchSingle(c, bind.keys) {
			return nav.Key(bind.kind), 1, true
		}
	}
	for _, bind := range d.bindings {
		if config.StartsBinding(c, bind.keys) {
			d.pending = c
			return nav.Event{}, 1, false
		}
	}

	if c >= 0x80 {
		// Skip the rest of a multi-byte rune.
		if !utf8.FullRune(d.buf) {
			return nav.Event{}, 0, false
		}
		_, size := utf8.DecodeRune(d.buf)
		return nav.Event{}, size, false
	}
	return nav.Event{}, 1, false
}
