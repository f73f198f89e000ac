package formatter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/bracecheck/internal"
	"github.com/gnolang/bracecheck/internal/report"
	tt "github.com/gnolang/bracecheck/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// IssueFormatter formats a single issue against its source.
type IssueFormatter interface {
	Format(issue tt.Issue, snippet *internal.SourceCode) string
}

// getIssueFormatter returns the formatter registered for rule, falling
// back to GeneralIssueFormatter.
func getIssueFormatter(rule string) IssueFormatter {
	switch rule {
	case report.UnexpectedClosingBrace:
		return &UnexpectedClosingFormatter{}
	case report.UnclosedInterpolation:
		return &InterpolationFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
func GenerateFormattedIssue(issues []tt.Issue, snippet *internal.SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(getIssueFormatter(issue.Rule).Format(issue, snippet))
	}
	return builder.String()
}

/***** Issue Formatter Builder *****/

type IssueFormatterBuilder struct {
	result          strings.Builder
	issue           tt.Issue
	snippet         *internal.SourceCode
	maxLineNumWidth int
	padding         string
	commonIndent    string
}

func NewIssueFormatterBuilder(issue tt.Issue, snippet *internal.SourceCode) *IssueFormatterBuilder {
	width := calculateMaxLineNumWidth(issue.End.Line)
	b := &IssueFormatterBuilder{
		issue:           issue,
		snippet:         snippet,
		maxLineNumWidth: width,
		padding:         strings.Repeat(" ", width+1),
	}
	if b.validRange() {
		b.commonIndent = findCommonIndent(snippet.Lines[issue.Start.Line-1 : issue.End.Line])
	}
	return b
}

func (b *IssueFormatterBuilder) validRange() bool {
	return b.snippet != nil && isValidLineRange(b.issue.Start.Line, b.issue.End.Line, b.snippet.Lines)
}

func (b *IssueFormatterBuilder) AddHeader() *IssueFormatterBuilder {
	switch b.issue.Severity {
	case tt.SeverityWarning:
		b.result.WriteString(warningStyle.Sprint("warning: "))
	case tt.SeverityInfo:
		b.result.WriteString(infoStyle.Sprint("info: "))
	default:
		b.result.WriteString(errorStyle.Sprint("error: "))
	}
	b.result.WriteString(ruleStyle.Sprintln(b.issue.Rule))

	b.result.WriteString(lineStyle.Sprintf("%s--> ", strings.Repeat(" ", b.maxLineNumWidth)))
	b.result.WriteString(fileStyle.Sprintf("%s:%d:%d\n", b.issue.Filename, b.issue.Start.Line, b.issue.Start.Column))
	return b
}

func (b *IssueFormatterBuilder) AddCodeSnippet() *IssueFormatterBuilder {
	if !b.validRange() {
		return b
	}

	b.result.WriteString(lineStyle.Sprintf("%s|\n", b.padding))
	for i := b.issue.Start.Line; i <= b.issue.End.Line; i++ {
		line := strings.TrimPrefix(b.snippet.Lines[i-1], b.commonIndent)
		b.result.WriteString(lineStyle.Sprintf("%*d | ", b.maxLineNumWidth, i))
		b.result.WriteString(line + "\n")
	}
	return b
}

func (b *IssueFormatterBuilder) AddUnderlineAndMessage() *IssueFormatterBuilder {
	if !b.validRange() {
		b.result.WriteString(lineStyle.Sprintf("%s= ", b.padding))
		b.result.WriteString(messageStyle.Sprintf("%s\n", b.issue.Message))
		return b
	}

	indentWidth := calculateVisualColumn(b.commonIndent, len([]rune(b.commonIndent))+1)
	start := calculateVisualColumn(b.snippet.Lines[b.issue.Start.Line-1], b.issue.Start.Column) - indentWidth
	if start < 0 {
		start = 0
	}
	end := calculateVisualColumn(b.snippet.Lines[b.issue.End.Line-1], b.issue.End.Column) - indentWidth
	length := end - start + 1
	if length < 1 {
		length = 1
	}

	b.result.WriteString(lineStyle.Sprintf("%s| ", b.padding))
	b.result.WriteString(strings.Repeat(" ", start))
	b.result.WriteString(messageStyle.Sprintf("%s\n", strings.Repeat("~", length)))
	b.result.WriteString(lineStyle.Sprintf("%s= ", b.padding))
	b.result.WriteString(messageStyle.Sprintf("%s\n", b.issue.Message))
	return b
}

// AddInfo writes an extra line attached to the snippet gutter.
func (b *IssueFormatterBuilder) AddInfo(text string) *IssueFormatterBuilder {
	b.result.WriteString(lineStyle.Sprintf("%s| ", b.padding))
	b.result.WriteString(text + "\n")
	return b
}

func (b *IssueFormatterBuilder) AddSuggestion() *IssueFormatterBuilder {
	if b.issue.Suggestion == "" {
		return b
	}
	b.result.WriteString("\n")
	b.result.WriteString(suggestionStyle.Sprint("Suggestion: "))
	b.result.WriteString(b.issue.Suggestion + "\n")
	return b
}

func (b *IssueFormatterBuilder) AddNote() *IssueFormatterBuilder {
	if b.issue.Note == "" {
		return b
	}
	b.result.WriteString("\n")
	b.result.WriteString(suggestionStyle.Sprint("Note: "))
	b.result.WriteString(b.issue.Note + "\n")
	return b
}

func (b *IssueFormatterBuilder) Build() string {
	b.result.WriteString("\n")
	return b.result.String()
}

func isValidLineRange(startLine int, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn calculates the visual column position of the
// 1-based character column in line, taking tab characters into account.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	i := 0
	for _, ch := range line {
		i++
		if i == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	var firstIndent []rune
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
