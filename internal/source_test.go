package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\rb", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"\n", []string{""}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, SplitLines(tc.input), "input %q", tc.input)
	}
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "app.js")
	require.NoError(t, os.WriteFile(path, []byte("let a = {\n};\n"), 0o644))

	code, err := ReadSourceCode(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"let a = {", "};"}, code.Lines)
	assert.Equal(t, "let a = {\n};\n", string(code.Raw))

	_, err = ReadSourceCode(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestNewSourceCodeNormalizesLineEndings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		raw   string
		lines []string
	}{
		{"a\nb\n", "a\nb\n", []string{"a", "b"}},
		{"a\r\nb\r\n", "a\nb\n", []string{"a", "b"}},
		{"a\r{\r", "a\n{\n", []string{"a", "{"}},
		{"a\r\r\nb", "a\n\nb", []string{"a", "", "b"}},
	}

	for _, tc := range tests {
		code := NewSourceCode([]byte(tc.input))
		assert.Equal(t, tc.raw, string(code.Raw), "input %q", tc.input)
		assert.Equal(t, tc.lines, code.Lines, "input %q", tc.input)
	}
}
