package internal

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/bracecheck/internal/brace"
	"github.com/gnolang/bracecheck/internal/report"
	tt "github.com/gnolang/bracecheck/internal/types"
)

// Result is the outcome of checking one source.
type Result struct {
	Filename string        `json:"filename"`
	Verdict  brace.Verdict `json:"-"`
	Status   string        `json:"status"`
	Issues   []tt.Issue    `json:"issues"`
	Source   *SourceCode   `json:"-"`
	Cached   bool          `json:"-"`
}

// Engine checks sources for balanced braces.
type Engine struct {
	logger  *zap.Logger
	scanner *brace.Scanner
	options report.Options
	cache   *Cache

	severities   map[string]tt.Severity
	ignoredRules map[string]bool
	ignoredPaths []string

	// watch mode
	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	isWatching bool
	pending    *debouncer
	done       chan struct{}
}

// NewEngine creates a new engine. rules overrides the severity of the
// issues produced for each rule name; a rule set to off is ignored.
func NewEngine(logger *zap.Logger, options report.Options, rules map[string]tt.ConfigRule) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Tail <= 0 || options.ContextBefore < 0 || options.ContextAfter < 0 {
		return nil, fmt.Errorf("invalid report options: %+v", options)
	}

	engine := &Engine{
		logger:       logger,
		scanner:      brace.NewScanner(logger.Named("scanner")),
		options:      options,
		severities:   make(map[string]tt.Severity),
		ignoredRules: make(map[string]bool),
	}
	engine.applyRules(rules)

	return engine, nil
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	for key, rule := range rules {
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
			continue
		}
		e.severities[key] = rule.Severity
	}
}

// SetCache enables verdict caching for files.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

func (e *Engine) Options() report.Options {
	return e.options
}

// Run checks the file at filename. It returns nil without error when the
// path is ignored.
func (e *Engine) Run(filename string) (*Result, error) {
	if e.isIgnoredPath(filename) {
		e.logger.Debug("Skipping ignored path", zap.String("file", filename))
		return nil, nil
	}

	source, err := ReadSourceCode(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache != nil {
		if verdict, ok := e.cache.Get(filename, source.Raw); ok {
			e.logger.Debug("Using cached verdict", zap.String("file", filename))
			result := e.newResult(filename, verdict, source)
			result.Cached = true
			return result, nil
		}
	}

	verdict := e.scanner.Scan(source.Raw)
	if e.cache != nil {
		if err := e.cache.Set(filename, source.Raw, verdict); err != nil {
			e.logger.Warn("Failed to cache verdict", zap.String("file", filename), zap.Error(err))
		}
	}

	return e.newResult(filename, verdict, source), nil
}

// RunSource checks an in-memory source.
func (e *Engine) RunSource(source []byte) (*Result, error) {
	code := NewSourceCode(source)
	return e.newResult("", e.scanner.Scan(code.Raw), code), nil
}

func (e *Engine) newResult(filename string, verdict brace.Verdict, source *SourceCode) *Result {
	return &Result{
		Filename: filename,
		Verdict:  verdict,
		Status:   verdict.Kind.String(),
		Issues:   e.filterIssues(report.Issues(filename, verdict, e.options)),
		Source:   source,
	}
}

func (e *Engine) filterIssues(issues []tt.Issue) []tt.Issue {
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if e.ignoredRules[issue.Rule] {
			continue
		}
		if severity, ok := e.severities[issue.Rule]; ok {
			issue.Severity = severity
		}
		filtered = append(filtered, issue)
	}
	return filtered
}

func (e *Engine) IgnoreRule(rule string) {
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching path, either as a glob pattern or as a
// path prefix.
func (e *Engine) IgnorePath(path string) {
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.Clean(filename)
	for _, pattern := range e.ignoredPaths {
		if matched, _ := filepath.Match(pattern, clean); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(clean)); matched {
			return true
		}
		if clean == pattern || strings.HasPrefix(clean, pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
