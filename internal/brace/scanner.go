// Package brace checks that curly braces in C-family script sources are
// balanced, ignoring braces that appear inside comments and string
// literals and tracking `${ ... }` interpolations inside template strings.
package brace

import "go.uber.org/zap"

// Scanner runs brace scans. It keeps no state between scans and may be
// reused.
type Scanner struct {
	logger *zap.Logger
}

// NewScanner creates a scanner that reports stack events to logger at
// debug level. A nil logger disables logging.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// Scan checks src with a scanner that does not log.
func Scan(src []byte) Verdict {
	return NewScanner(nil).Scan(src)
}

// state is owned by a single Scan call.
type state struct {
	src []rune
	pos int

	line   int
	column int

	mode          Mode
	escaped       bool
	interpolation int

	stack OpenStack
}

func (st *state) peek() rune {
	if st.pos+1 < len(st.src) {
		return st.src[st.pos+1]
	}
	return 0
}

func (st *state) here(kind Kind) Entry {
	return Entry{Line: st.line, Column: st.column, Kind: kind}
}

// Scan walks src once and returns its verdict. It stops at the first
// closing brace in code that has nothing to close.
func (s *Scanner) Scan(src []byte) Verdict {
	st := &state{src: []rune(string(src)), line: 1}

	for st.pos = 0; st.pos < len(st.src); st.pos++ {
		ch := st.src[st.pos]

		if ch == '\n' {
			st.line++
			st.column = 0
			if st.mode == ModeLineComment {
				st.mode = ModeNormal
			}
			st.escaped = false
			continue
		}
		st.column++

		switch st.mode {
		case ModeLineComment:
			continue
		case ModeBlockComment:
			if ch == '*' && st.peek() == '/' {
				st.mode = ModeNormal
			}
			continue
		}

		if !st.mode.quoted() && ch == '/' {
			switch st.peek() {
			case '/':
				st.mode = ModeLineComment
				continue
			case '*':
				st.mode = ModeBlockComment
				continue
			}
		}

		if ch == '\\' && !st.escaped {
			st.escaped = true
			continue
		}

		switch st.mode {
		case ModeSingleQuote, ModeDoubleQuote:
			s.stepQuote(st, ch)
			continue
		case ModeBacktick:
			s.stepTemplate(st, ch)
			continue
		}

		if mode, ok := quoteMode[ch]; ok {
			st.mode = mode
			st.escaped = false
			continue
		}

		switch ch {
		case '{':
			e := st.here(KindBrace)
			st.stack.Push(e)
			s.logger.Debug("push", zap.Int("line", e.Line), zap.Int("column", e.Column), zap.String("kind", string(e.Kind)))
		case '}':
			if _, ok := st.stack.Pop(); !ok {
				s.logger.Debug("unexpected closing brace", zap.Int("line", st.line), zap.Int("column", st.column))
				return Verdict{
					Kind: UnexpectedClosing,
					At:   Position{Line: st.line, Column: st.column},
				}
			}
			s.logger.Debug("pop", zap.Int("line", st.line), zap.Int("column", st.column))
		}
	}

	if st.stack.Len() == 0 {
		return Verdict{Kind: AllMatched}
	}
	return Verdict{Kind: UnmatchedOpen, Open: st.stack.Entries()}
}

func (s *Scanner) stepQuote(st *state, ch rune) {
	closer := '\''
	if st.mode == ModeDoubleQuote {
		closer = '"'
	}
	if ch == closer && !st.escaped {
		st.mode = ModeNormal
	}
	st.escaped = false
}

func (s *Scanner) stepTemplate(st *state, ch rune) {
	switch {
	case ch == '`' && !st.escaped && st.interpolation == 0:
		st.mode = ModeNormal
	case ch == '$' && st.peek() == '{':
		e := st.here(KindInterpolation)
		st.interpolation++
		st.stack.Push(e)
		s.logger.Debug("push", zap.Int("line", e.Line), zap.Int("column", e.Column), zap.String("kind", string(e.Kind)))
	case ch == '}' && st.interpolation > 0:
		// closes the nearest `${`, which need not be the top entry
		if e, ok := st.stack.RemoveNearest(KindInterpolation); ok {
			st.interpolation--
			s.logger.Debug("close interpolation", zap.Int("line", e.Line), zap.Int("column", e.Column))
		}
	}
	st.escaped = false
}
