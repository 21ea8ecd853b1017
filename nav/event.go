package nav

import "fmt"

// Mode is the navigator's top-level state.
type Mode int

const (
	Browsing Mode = iota
	Searching
	Terminated
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "browsing"
	case Searching:
		return "searching"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// EventKind classifies an input event independent of the terminal encoding.
type EventKind int

const (
	EventNone EventKind = iota
	EventUp
	EventDown
	EventLeft
	EventRight
	EventActivate
	EventSearch
	EventQuit
	EventText // literal rune, address entry or link number
	EventBackspace
	EventDelete
	EventDeleteWord
	EventKillLine
	EventUndo
	EventCancel
	EventPageDown
	EventPageUp
	EventTop
	EventBottom
	EventReload
)

var eventNames = map[EventKind]string{
	EventNone:       "none",
	EventUp:         "up",
	EventDown:       "down",
	EventLeft:       "left",
	EventRight:      "right",
	EventActivate:   "activate",
	EventSearch:     "search",
	EventQuit:       "quit",
	EventText:       "text",
	EventBackspace:  "backspace",
	EventDelete:     "delete",
	EventDeleteWord: "delete-word",
	EventKillLine:   "kill-line",
	EventUndo:       "undo",
	EventCancel:     "cancel",
	EventPageDown:   "page-down",
	EventPageUp:     "page-up",
	EventTop:        "top",
	EventBottom:     "bottom",
	EventReload:     "reload",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one classified key press.
type Event struct {
	Kind EventKind
	Rune rune // set for EventText
}

// Key returns an event of the given kind.
func Key(kind EventKind) Event {
	return Event{Kind: kind}
}

// Text returns a literal-text event.
func Text(r rune) Event {
	return Event{Kind: EventText, Rune: r}
}

func (e Event) String() string {
	if e.Kind == EventText {
		return fmt.Sprintf("text(%q)", e.Rune)
	}
	return e.Kind.String()
}
