package render

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

const (
	ClearScreen    = "\033[2J"
	CursorHome     = "\033[H"
	CursorHide     = "\033[?25l"
	CursorShow     = "\033[?25h"
	AltScreenEnter = "\033[?1049h"
	AltScreenExit  = "\033[?1049l"
)

// Screen owns the terminal for a full-screen session: keys are read raw
// from in and frames are drawn on the alternate screen of out.
type Screen struct {
	in, out  *os.File
	original unix.Termios
	canvas   *Canvas
}

// OpenScreen switches in to raw mode and out to the alternate screen.
// Close undoes both.
func OpenScreen(in, out *os.File) (*Screen, error) {
	termios, err := unix.IoctlGetTermios(int(in.Fd()), ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("reading terminal mode: %w", err)
	}
	s := &Screen{in: in, out: out, original: *termios}

	width, height, err := s.Size()
	if err != nil {
		return nil, err
	}
	s.canvas = NewCanvas(width, height)

	if err := s.rawMode(); err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	io.WriteString(out, AltScreenEnter+CursorHide+ClearScreen)
	return s, nil
}

// rawMode disables echo, line buffering and signal keys. Reads block until
// at least one byte arrives; the rest of an escape sequence is collected
// within one tenth of a second.
func (s *Screen) rawMode() error {
	raw := s.original
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 1
	return unix.IoctlSetTermios(int(s.in.Fd()), ioctlSetTermios, &raw)
}

// Close leaves the alternate screen and restores the original terminal mode.
func (s *Screen) Close() error {
	_, werr := io.WriteString(s.out, CursorShow+AltScreenExit)
	return errors.Join(unix.IoctlSetTermios(int(s.in.Fd()), ioctlSetTermios, &s.original), werr)
}

// Input returns the raw key stream.
func (s *Screen) Input() io.Reader { return s.in }

// Size returns the output terminal's dimensions in cells.
func (s *Screen) Size() (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(int(s.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// Canvas returns the canvas for the next frame, replacing it with a blank one
// of the new size when the terminal was resized. The bool reports a resize.
func (s *Screen) Canvas() (*Canvas, bool) {
	width, height, err := s.Size()
	if err != nil || (width == s.canvas.Width() && height == s.canvas.Height()) {
		return s.canvas, false
	}
	s.canvas = NewCanvas(width, height)
	io.WriteString(s.out, ClearScreen)
	return s.canvas, true
}

// Present draws the current canvas.
func (s *Screen) Present() error {
	return s.canvas.RenderTo(s.out)
}
