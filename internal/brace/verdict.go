package brace

// VerdictKind classifies the outcome of a scan.
type VerdictKind int

const (
	AllMatched VerdictKind = iota
	UnmatchedOpen
	UnexpectedClosing
)

func (k VerdictKind) String() string {
	switch k {
	case AllMatched:
		return "ALL_MATCHED"
	case UnmatchedOpen:
		return "UNMATCHED_OPEN_COUNT"
	case UnexpectedClosing:
		return "UNEXPECTED_CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Verdict is the result of a scan.
type Verdict struct {
	Kind VerdictKind
	// Open holds every unmatched opening marker, oldest first.
	// It is only populated for UnmatchedOpen.
	Open []Entry
	// At is the position of the unexpected closing brace.
	At Position
}

// Count returns the number of unmatched opening markers.
func (v Verdict) Count() int {
	return len(v.Open)
}

// Tail returns the n most recently pushed unmatched entries, oldest first.
func (v Verdict) Tail(n int) []Entry {
	if n <= 0 {
		return nil
	}
	if n > len(v.Open) {
		n = len(v.Open)
	}
	return v.Open[len(v.Open)-n:]
}

// Last returns the most recently pushed unmatched entry.
func (v Verdict) Last() (Entry, bool) {
	if len(v.Open) == 0 {
		return Entry{}, false
	}
	return v.Open[len(v.Open)-1], true
}

func (v Verdict) Balanced() bool {
	return v.Kind == AllMatched
}
