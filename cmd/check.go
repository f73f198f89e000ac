package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/bracecheck/formatter"
	"github.com/gnolang/bracecheck/internal"
	"github.com/gnolang/bracecheck/internal/report"
	"github.com/gnolang/bracecheck/lint"
)

const (
	formatText   = "text"
	formatPretty = "pretty"
	formatJSON   = "json"
)

var (
	outputFormat string
	outPath      string
	ignoreRules  string
	ignorePaths  string
	failOnIssues bool
	showProgress bool
	cacheDir     string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check brace balance of files or directories",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, config, err := lint.New(logger, cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		applyIgnores(engine, ignoreRules, ignorePaths)

		if cacheDir != "" {
			cache, err := internal.NewCache(cacheDir)
			if err != nil {
				logger.Fatal("Failed to open cache", zap.String("dir", cacheDir), zap.Error(err))
			}
			engine.SetCache(cache)
		}

		opts := lint.Options{Extensions: config.Extensions}
		if showProgress {
			opts.Progress = os.Stderr
		}

		out := io.Writer(os.Stdout)
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				logger.Fatal("Failed to create output file", zap.String("path", outPath), zap.Error(err))
			}
			defer f.Close()
			out = f
		}

		problems, err := runCheck(ctx, logger, engine, args, opts, config.Report, outputFormat, out)
		if err != nil {
			logger.Error("Error checking files", zap.Error(err))
			os.Exit(1)
		}
		if failOnIssues && problems > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	addCheckFlags(checkCmd)
}

// addCheckFlags registers the check flags on cmd, so the root command
// accepts them too.
func addCheckFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&outputFormat, "format", formatText, "Output format (text, pretty, json)")
	flags.StringVarP(&outPath, "output", "o", "", "Write the report to this file instead of stdout")
	flags.StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	flags.StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	flags.BoolVar(&failOnIssues, "fail", false, "Exit with status 1 when any file has brace issues that are not ignored")
	flags.BoolVar(&showProgress, "progress", false, "Show a progress bar while checking directories")
	flags.StringVar(&cacheDir, "cache-dir", "", "Directory for caching verdicts of unchanged files")
}

func applyIgnores(engine lint.LintEngine, rules string, paths string) {
	for _, rule := range splitList(rules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(paths) {
		engine.IgnorePath(path)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runCheck checks paths and writes the report in the given format. It
// returns the number of files left with issues once ignored rules and
// severities are applied. The text format always prints the raw verdict.
func runCheck(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	opts lint.Options,
	reportOpts report.Options,
	format string,
	out io.Writer,
) (int, error) {
	results, err := lint.ProcessFiles(ctx, logger, engine, paths, opts, lint.ProcessFile)
	if err != nil {
		return 0, err
	}

	problems := 0
	for _, r := range results {
		if len(r.Issues) > 0 {
			problems++
		}
	}

	switch format {
	case formatText:
		err = writeText(out, results, reportOpts)
	case formatPretty:
		err = writePretty(out, results)
	case formatJSON:
		err = writeJSON(out, results)
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	return problems, err
}

func writeText(out io.Writer, results []*internal.Result, opts report.Options) error {
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s\n", r.Filename)
		}
		if err := report.WriteText(out, r.Verdict, r.Source.Lines, opts); err != nil {
			return err
		}
	}
	return nil
}

func writePretty(out io.Writer, results []*internal.Result) error {
	problems := 0
	for _, r := range results {
		if len(r.Issues) == 0 {
			continue
		}
		problems++
		if _, err := io.WriteString(out, formatter.GenerateFormattedIssue(r.Issues, r.Source)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%d file(s) checked, %d with brace issues\n", len(results), problems)
	return err
}

func writeJSON(out io.Writer, results []*internal.Result) error {
	if results == nil {
		results = []*internal.Result{}
	}
	d, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(d))
	return err
}
