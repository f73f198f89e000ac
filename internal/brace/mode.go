package brace

// Mode is the lexical context of the current scan position.
type Mode int

const (
	ModeNormal Mode = iota
	ModeLineComment
	ModeBlockComment
	ModeSingleQuote
	ModeDoubleQuote
	ModeBacktick
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeLineComment:
		return "line-comment"
	case ModeBlockComment:
		return "block-comment"
	case ModeSingleQuote:
		return "single-quote"
	case ModeDoubleQuote:
		return "double-quote"
	case ModeBacktick:
		return "backtick"
	default:
		return "unknown"
	}
}

// quoted reports whether m is one of the string modes.
func (m Mode) quoted() bool {
	return m == ModeSingleQuote || m == ModeDoubleQuote || m == ModeBacktick
}

// quoteMode maps an opening quote character to the mode it enters.
var quoteMode = map[rune]Mode{
	'\'': ModeSingleQuote,
	'"':  ModeDoubleQuote,
	'`':  ModeBacktick,
}
