package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/bracecheck/internal/brace"
	"github.com/gnolang/bracecheck/internal/report"
	tt "github.com/gnolang/bracecheck/internal/types"
)

func newTestEngine(t *testing.T, rules map[string]tt.ConfigRule) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, report.DefaultOptions(), rules)
	require.NoError(t, err)
	return engine
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewEngineRejectsInvalidOptions(t *testing.T) {
	t.Parallel()
	_, err := NewEngine(nil, report.Options{Tail: 0}, nil)
	assert.Error(t, err)
}

func TestEngineRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	engine := newTestEngine(t, nil)

	tests := []struct {
		name    string
		content string
		kind    brace.VerdictKind
		status  string
		issues  int
	}{
		{"balanced", "function a() { return `${b}`; }\n", brace.AllMatched, "ALL_MATCHED", 0},
		{"unmatched", "function a() {\n", brace.UnmatchedOpen, "UNMATCHED_OPEN_COUNT", 1},
		{"unexpected", "}\n", brace.UnexpectedClosing, "UNEXPECTED_CLOSING", 1},
	}

	for _, tc := range tests {
		path := writeFile(t, dir, tc.name+".js", tc.content)
		result, err := engine.Run(path)
		require.NoError(t, err, tc.name)
		require.NotNil(t, result, tc.name)
		assert.Equal(t, tc.kind, result.Verdict.Kind, tc.name)
		assert.Equal(t, tc.status, result.Status, tc.name)
		assert.Len(t, result.Issues, tc.issues, tc.name)
		assert.Equal(t, path, result.Filename, tc.name)
	}

	_, err := engine.Run(filepath.Join(dir, "missing.js"))
	assert.Error(t, err)
}

func TestEngineRunSource(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)

	result, err := engine.RunSource([]byte("{\n  '}'\n"))
	require.NoError(t, err)
	assert.Equal(t, brace.UnmatchedOpen, result.Verdict.Kind)
	assert.Equal(t, []string{"{", "  '}'"}, result.Source.Lines)
}

func TestEngineRunSourceCarriageReturns(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)

	result, err := engine.RunSource([]byte("a\r{\r"))
	require.NoError(t, err)
	require.Equal(t, []brace.Entry{{Line: 2, Column: 1, Kind: brace.KindBrace}}, result.Verdict.Open)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, result.Verdict, result.Source.Lines, engine.Options()))
	assert.Equal(t, "UNMATCHED_OPEN_COUNT 1\n"+
		"  AT 2 1 {\n"+
		"\n"+
		"Context around last unmatched open:\n"+
		"     1: a\n"+
		">    2: {\n", buf.String())
}

func TestEngineRuleSeverities(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, map[string]tt.ConfigRule{
		report.UnmatchedOpenBrace:    {Severity: tt.SeverityWarning},
		report.UnclosedInterpolation: {Severity: tt.SeverityOff},
	})

	result, err := engine.RunSource([]byte("{ `${"))
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, report.UnmatchedOpenBrace, result.Issues[0].Rule)
	assert.Equal(t, tt.SeverityWarning, result.Issues[0].Severity)
	// the verdict itself is never filtered
	assert.Equal(t, 2, result.Verdict.Count())
}

func TestEngineIgnorePath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vendor"), 0o755))
	vendored := writeFile(t, dir, filepath.Join("vendor", "lib.js"), "{")
	minified := writeFile(t, dir, "app.min.js", "{")
	kept := writeFile(t, dir, "app.js", "{")

	engine := newTestEngine(t, nil)
	engine.IgnorePath(filepath.Join(dir, "vendor"))
	engine.IgnorePath("*.min.js")

	for _, path := range []string{vendored, minified} {
		result, err := engine.Run(path)
		assert.NoError(t, err)
		assert.Nil(t, result, path)
	}

	result, err := engine.Run(kept)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestEngineUsesCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cache, err := NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	engine := newTestEngine(t, nil)
	engine.SetCache(cache)
	path := writeFile(t, dir, "app.js", "{")

	first, err := engine.Run(path)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := engine.Run(path)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Verdict, second.Verdict)

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	third, err := engine.Run(path)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.True(t, third.Verdict.Balanced())
}

func TestEngineWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.js", "{}")
	engine := newTestEngine(t, nil)

	results := make(chan *Result, 4)
	err := engine.StartWatching([]string{dir}, []string{".js"}, func(result *Result, err error) {
		if err != nil {
			return
		}
		select {
		case results <- result:
		default:
		}
	})
	require.NoError(t, err)
	defer engine.StopWatching()

	assert.ErrorIs(t, engine.StartWatching([]string{dir}, nil, nil), ErrAlreadyWatching)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	select {
	case result := <-results:
		assert.Equal(t, path, result.Filename)
		assert.Equal(t, brace.UnmatchedOpen, result.Verdict.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no result received for modified file")
	}
}

func TestEngineWatchCoalescesBurstAndSeesCreate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.js", "{}")
	engine := newTestEngine(t, nil)

	results := make(chan *Result, 16)
	require.NoError(t, engine.StartWatching([]string{dir}, []string{".js"}, func(result *Result, err error) {
		if err == nil {
			results <- result
		}
	}))
	defer engine.StopWatching()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	}

	select {
	case result := <-results:
		assert.Equal(t, path, result.Filename)
		assert.Equal(t, brace.UnmatchedOpen, result.Verdict.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no result received for modified file")
	}
	select {
	case result := <-results:
		t.Fatalf("burst of writes checked more than once: %s", result.Filename)
	case <-time.After(4 * watchDebounce):
	}

	// editors that save by renaming a temp file produce a create event
	staged := writeFile(t, t.TempDir(), "staged.js", "}")
	renamed := filepath.Join(dir, "renamed.js")
	require.NoError(t, os.Rename(staged, renamed))

	select {
	case result := <-results:
		assert.Equal(t, renamed, result.Filename)
		assert.Equal(t, brace.UnexpectedClosing, result.Verdict.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("no result received for created file")
	}
}

func TestDebouncer(t *testing.T) {
	t.Parallel()
	d := newDebouncer(20 * time.Millisecond)

	calls := make(chan string, 8)
	for i := 0; i < 3; i++ {
		d.trigger("a.js", func() { calls <- "a.js" })
	}
	d.trigger("b.js", func() { calls <- "b.js" })

	var got []string
	for i := 0; i < 2; i++ {
		select {
		case name := <-calls:
			got = append(got, name)
		case <-time.After(time.Second):
			t.Fatal("debounced call did not run")
		}
	}
	assert.ElementsMatch(t, []string{"a.js", "b.js"}, got)

	select {
	case name := <-calls:
		t.Fatalf("unexpected extra call for %s", name)
	case <-time.After(100 * time.Millisecond):
	}

	d.stop()
	d.trigger("a.js", func() { calls <- "a.js" })
	select {
	case <-calls:
		t.Fatal("stopped debouncer ran a call")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopWatchingWithoutStart(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)
	assert.ErrorIs(t, engine.StopWatching(), ErrNotWatching)
}
