package brace

// Kind identifies what opened a stack entry.
type Kind string

const (
	KindBrace         Kind = "{"
	KindInterpolation Kind = "${"
)

// Entry is an opening marker that has not been closed yet.
type Entry struct {
	Line   int
	Column int
	Kind   Kind
}

// OpenStack records opening markers in push order.
//
// It is not a strict stack: an interpolation close removes the nearest
// `${` entry even when structural entries were pushed above it.
type OpenStack struct {
	entries []Entry
}

func (s *OpenStack) Push(e Entry) {
	s.entries = append(s.entries, e)
}

// Pop removes the top entry. It reports false when the stack is empty.
func (s *OpenStack) Pop() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// RemoveNearest removes the most recently pushed entry of the given kind,
// searching from the top down.
func (s *OpenStack) RemoveNearest(kind Kind) (Entry, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Kind != kind {
			continue
		}
		found := s.entries[i]
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		return found, true
	}
	return Entry{}, false
}

func (s *OpenStack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries, oldest first.
func (s *OpenStack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
