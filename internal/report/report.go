// Package report renders brace verdicts as the plain-text diagnostic
// report and as lint issues.
package report

import (
	"bufio"
	"fmt"
	"go/token"
	"io"

	"github.com/gnolang/bracecheck/internal/brace"
	tt "github.com/gnolang/bracecheck/internal/types"
)

// rule set
const (
	UnexpectedClosingBrace = "unexpected-closing-brace"
	UnmatchedOpenBrace     = "unmatched-open-brace"
	UnclosedInterpolation  = "unclosed-interpolation"
)

const (
	DefaultTail          = 8
	DefaultContextBefore = 3
	DefaultContextAfter  = 3
)

// Options bounds the diagnostic windows of a report.
type Options struct {
	// Tail is how many of the most recent unmatched openers are listed.
	Tail int `yaml:"tail"`
	// ContextBefore and ContextAfter are the number of source lines shown
	// around the last unmatched opener.
	ContextBefore int `yaml:"context_before"`
	ContextAfter  int `yaml:"context_after"`
}

func DefaultOptions() Options {
	return Options{
		Tail:          DefaultTail,
		ContextBefore: DefaultContextBefore,
		ContextAfter:  DefaultContextAfter,
	}
}

// WriteText writes the report for v. lines are the source lines the
// verdict was computed from.
func WriteText(w io.Writer, v brace.Verdict, lines []string, opts Options) error {
	bw := bufio.NewWriter(w)

	switch v.Kind {
	case brace.AllMatched:
		fmt.Fprintln(bw, "ALL_MATCHED")
	case brace.UnexpectedClosing:
		fmt.Fprintf(bw, "UNEXPECTED_CLOSING at %d %d\n", v.At.Line, v.At.Column)
	case brace.UnmatchedOpen:
		fmt.Fprintf(bw, "UNMATCHED_OPEN_COUNT %d\n", v.Count())
		for _, e := range v.Tail(opts.Tail) {
			fmt.Fprintf(bw, "  AT %d %d %s\n", e.Line, e.Column, e.Kind)
		}
		last, _ := v.Last()
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Context around last unmatched open:")
		start, end := contextWindow(last.Line, len(lines), opts)
		for i := start; i < end; i++ {
			marker := " "
			if i+1 == last.Line {
				marker = ">"
			}
			fmt.Fprintf(bw, "%s %4d: %s\n", marker, i+1, lines[i])
		}
	default:
		return fmt.Errorf("unknown verdict kind %d", v.Kind)
	}

	return bw.Flush()
}

// contextWindow returns the 0-based half-open range of lines to show
// around the 1-based line.
func contextWindow(line, total int, opts Options) (int, int) {
	start := max(0, line-1-opts.ContextBefore)
	end := min(total, line+opts.ContextAfter)
	return start, end
}

// Issues converts v into lint issues for filename.
func Issues(filename string, v brace.Verdict, opts Options) []tt.Issue {
	switch v.Kind {
	case brace.UnexpectedClosing:
		pos := token.Position{Filename: filename, Line: v.At.Line, Column: v.At.Column}
		return []tt.Issue{{
			Rule:       UnexpectedClosingBrace,
			Category:   "syntax",
			Filename:   filename,
			Message:    "closing brace has no matching opening brace",
			Suggestion: "remove the brace or add the missing `{` before it",
			Note:       "scanning stopped at this brace",
			Start:      pos,
			End:        pos,
			Severity:   tt.SeverityError,
		}}
	case brace.UnmatchedOpen:
		tail := v.Tail(opts.Tail)
		issues := make([]tt.Issue, 0, len(tail))
		for _, e := range tail {
			issues = append(issues, unmatchedIssue(filename, e, v.Count()))
		}
		return issues
	default:
		return nil
	}
}

func unmatchedIssue(filename string, e brace.Entry, count int) tt.Issue {
	start := token.Position{Filename: filename, Line: e.Line, Column: e.Column}
	end := start
	issue := tt.Issue{
		Rule:     UnmatchedOpenBrace,
		Category: "syntax",
		Filename: filename,
		Message:  "opening brace is never closed",
		Note:     fmt.Sprintf("%d unmatched opening marker(s) in file", count),
		Start:    start,
		Severity: tt.SeverityError,
	}
	if e.Kind == brace.KindInterpolation {
		end.Column++
		issue.Rule = UnclosedInterpolation
		issue.Message = "template interpolation `${` is never closed"
	}
	issue.End = end
	return issue
}
