package formatter

import (
	"github.com/gnolang/bracecheck/internal"
	tt "github.com/gnolang/bracecheck/internal/types"
)

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) Format(issue tt.Issue, snippet *internal.SourceCode) string {
	return NewIssueFormatterBuilder(issue, snippet).
		AddHeader().
		AddCodeSnippet().
		AddUnderlineAndMessage().
		AddSuggestion().
		AddNote().
		Build()
}
