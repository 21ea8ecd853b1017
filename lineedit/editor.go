// Package lineedit provides the single-line editor behind the address prompt.
package lineedit

// editorState represents a snapshot of editor state for undo.
type editorState struct {
	text   []rune
	cursor int
}

// Editor is a single-line text editor with a rune cursor.
type Editor struct {
	text    []rune
	cursor  int
	history []editorState
	maxHist int // 0 = unlimited
}

// New creates a new empty Editor.
func New() *Editor {
	return &Editor{maxHist: 100}
}

// Text returns the current text.
func (e *Editor) Text() string {
	return string(e.text)
}

// Cursor returns the cursor position in runes.
func (e *Editor) Cursor() int {
	return e.cursor
}

// SetCursor sets the cursor position, clamping to valid range.
func (e *Editor) SetCursor(pos int) {
	e.cursor = max(0, min(pos, len(e.text)))
}

// Len returns the length of the text in runes.
func (e *Editor) Len() int {
	return len(e.text)
}

// Clear resets the editor to empty state and drops the undo history.
func (e *Editor) Clear() {
	e.text = e.text[:0]
	e.cursor = 0
	e.history = e.history[:0]
}

// Set replaces the text and moves cursor to end.
func (e *Editor) Set(text string) {
	e.text = []rune(text)
	e.cursor = len(e.text)
}

// saveState pushes the current state onto the undo history.
func (e *Editor) saveState() {
	if len(e.history) > 0 {
		last := e.history[len(e.history)-1]
		if last.cursor == e.cursor && string(last.text) == string(e.text) {
			return
		}
	}
	e.history = append(e.history, editorState{
		text:   append([]rune(nil), e.text...),
		cursor: e.cursor,
	})
	if e.maxHist > 0 && len(e.history) > e.maxHist {
		e.history = e.history[1:]
	}
}

// Undo restores the state before the last edit.
// Returns true if undo was performed.
func (e *Editor) Undo() bool {
	if len(e.history) == 0 {
		return false
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.text = last.text
	e.cursor = last.cursor
	return true
}

// Insert adds a rune at the cursor position.
func (e *Editor) Insert(r rune) {
	e.saveState()
	e.text = append(e.text, 0)
	copy(e.text[e.cursor+1:], e.text[e.cursor:])
	e.text[e.cursor] = r
	e.cursor++
}

// InsertString adds a string at the cursor position.
func (e *Editor) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// DeleteBackward removes the rune before the cursor (backspace).
// Returns true if a rune was deleted.
func (e *Editor) DeleteBackward() bool {
	if e.cursor == 0 {
		return false
	}
	e.saveState()
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
	return true
}

// DeleteForward removes the rune at the cursor (delete).
// Returns true if a rune was deleted.
func (e *Editor) DeleteForward() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.saveState()
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
	return true
}

// Left moves cursor one rune left.
// Returns true if cursor moved.
func (e *Editor) Left() bool {
	if e.cursor == 0 {
		return false
	}
	e.cursor--
	return true
}

// Right moves cursor one rune right.
// Returns true if cursor moved.
func (e *Editor) Right() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.cursor++
	return true
}

// Home moves cursor to beginning of line.
func (e *Editor) Home() {
	e.cursor = 0
}

// End moves cursor to end of line.
func (e *Editor) End() {
	e.cursor = len(e.text)
}

// isSeparator reports whether r ends a path-like word in an address.
func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '/', '.', ':', '?', '&', '=', '#', '-', '_':
		return true
	}
	return false
}

// wordBoundaryLeft finds the start of the word before the cursor.
func (e *Editor) wordBoundaryLeft() int {
	i := e.cursor
	for i > 0 && isSeparator(e.text[i-1]) {
		i--
	}
	for i > 0 && !isSeparator(e.text[i-1]) {
		i--
	}
	return i
}

// DeleteWordBackward deletes from the previous word boundary to the cursor (Ctrl+W).
func (e *Editor) DeleteWordBackward() bool {
	pos := e.wordBoundaryLeft()
	if pos == e.cursor {
		return false
	}
	e.saveState()
	e.text = append(e.text[:pos], e.text[e.cursor:]...)
	e.cursor = pos
	return true
}

// KillToStart deletes from beginning to cursor (Ctrl+U).
func (e *Editor) KillToStart() {
	if e.cursor == 0 {
		return
	}
	e.saveState()
	e.text = append(e.text[:0:0], e.text[e.cursor:]...)
	e.cursor = 0
}
