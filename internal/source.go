package internal

import (
	"bytes"
	"os"
	"strings"
)

// SourceCode stores the content of a source code file. Line breaks in Raw
// are normalized to LF, so line numbers reported by the scanner index Lines.
type SourceCode struct {
	Raw   []byte
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

func NewSourceCode(content []byte) *SourceCode {
	content = normalizeNewlines(content)
	return &SourceCode{Raw: content, Lines: SplitLines(string(content))}
}

// normalizeNewlines rewrites CRLF and lone CR line breaks as LF.
func normalizeNewlines(content []byte) []byte {
	if !bytes.ContainsRune(content, '\r') {
		return content
	}
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}

// SplitLines splits s on LF, CRLF and CR. A trailing line break does not
// produce an empty final line.
func SplitLines(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}
