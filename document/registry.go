package document

// LinkEntry is one addressable hyperlink.
type LinkEntry struct {
	Index int    // 1-based, in pre-order encounter order
	Href  string // raw target, may be empty or relative
	Line  int    // 0-based position in Page.Lines
}

// Registry maps link indices to targets and line positions, and line
// positions back to link indices. It is read-only once built.
type Registry struct {
	entries []LinkEntry
	byLine  map[int]int
}

func newRegistry(entries []LinkEntry) *Registry {
	r := &Registry{
		entries: entries,
		byLine:  make(map[int]int, len(entries)),
	}
	for _, e := range entries {
		r.byLine[e.Line] = e.Index
	}
	return r
}

func (r *Registry) entry(index int) (LinkEntry, bool) {
	if r == nil || index < 1 || index > len(r.entries) {
		return LinkEntry{}, false
	}
	return r.entries[index-1], true
}

// HrefOf returns the target of link index.
func (r *Registry) HrefOf(index int) (string, bool) {
	e, ok := r.entry(index)
	return e.Href, ok
}

// LineOf returns the line position of link index.
func (r *Registry) LineOf(index int) (int, bool) {
	e, ok := r.entry(index)
	return e.Line, ok
}

// LinkAtLine returns the link index living on line, if any.
func (r *Registry) LinkAtLine(line int) (int, bool) {
	if r == nil {
		return 0, false
	}
	index, ok := r.byLine[line]
	return index, ok
}

// MaxIndex returns the largest assigned index, or 0 when there are no links.
func (r *Registry) MaxIndex() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Len returns the number of links.
func (r *Registry) Len() int {
	return r.MaxIndex()
}

// Entries returns a copy of the link entries in index order.
func (r *Registry) Entries() []LinkEntry {
	if r == nil {
		return nil
	}
	out := make([]LinkEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// FirstAtOrAfter returns the first link whose line is >= line.
func (r *Registry) FirstAtOrAfter(line int) (int, bool) {
	if r == nil {
		return 0, false
	}
	for _, e := range r.entries {
		if e.Line >= line {
			return e.Index, true
		}
	}
	return 0, false
}

// LastAtOrBefore returns the last link whose line is <= line.
func (r *Registry) LastAtOrBefore(line int) (int, bool) {
	if r == nil {
		return 0, false
	}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Line <= line {
			return r.entries[i].Index, true
		}
	}
	return 0, false
}
