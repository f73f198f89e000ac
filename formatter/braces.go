package formatter

import (
	"github.com/gnolang/bracecheck/internal"
	tt "github.com/gnolang/bracecheck/internal/types"
)

// UnexpectedClosingFormatter formats a closing brace found with nothing
// left to close.
type UnexpectedClosingFormatter struct{}

func (f *UnexpectedClosingFormatter) Format(issue tt.Issue, snippet *internal.SourceCode) string {
	return NewIssueFormatterBuilder(issue, snippet).
		AddHeader().
		AddCodeSnippet().
		AddUnderlineAndMessage().
		AddInfo(warningStyle.Sprint("scanning stopped here, braces after this point were not checked")).
		AddSuggestion().
		Build()
}

// InterpolationFormatter formats a `${` left open inside a template string.
type InterpolationFormatter struct{}

func (f *InterpolationFormatter) Format(issue tt.Issue, snippet *internal.SourceCode) string {
	return NewIssueFormatterBuilder(issue, snippet).
		AddHeader().
		AddCodeSnippet().
		AddUnderlineAndMessage().
		AddInfo(warningStyle.Sprint("the first `}` inside the template closes the interpolation")).
		AddNote().
		Build()
}
