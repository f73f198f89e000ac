// Package internal provides the engine that checks script sources for
// balanced curly braces.
//
// Key components:
//
// Engine: reads a file, runs the brace scanner over it and converts the
// verdict into issues, applying the configured rule severities and
// ignored paths.
//
// Cache: remembers verdicts of files whose content has not changed since
// the last run.
//
// SourceCode: the raw content of a source file together with its lines,
// used to print context around reported braces.
//
// Watch mode re-checks files as they are written.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, report.DefaultOptions(), nil)
//	if err != nil {
//	    // handle error
//	}
//	result, err := engine.Run("app.js")
package internal
