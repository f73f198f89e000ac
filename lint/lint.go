package lint

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/bracecheck/internal"
	"github.com/gnolang/bracecheck/internal/finder"
	"github.com/gnolang/bracecheck/internal/report"
	tt "github.com/gnolang/bracecheck/internal/types"
)

// DefaultConfigPath is the configuration file read when none is given.
const DefaultConfigPath = ".bracecheck.yaml"

type LintEngine interface {
	Run(filePath string) (*internal.Result, error)
	RunSource(source []byte) (*internal.Result, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// Options controls how paths are expanded and processed.
type Options struct {
	Extensions []string
	// Workers bounds the number of files checked concurrently.
	// Zero means runtime.NumCPU().
	Workers int
	// Progress receives the directory progress bar. Nil hides it.
	Progress io.Writer
}

// New creates an engine from the configuration file at configurationPath.
// A missing file at the default path falls back to the default configuration.
func New(logger *zap.Logger, configurationPath string) (*internal.Engine, Config, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, config, err
	}

	engine, err := internal.NewEngine(logger, config.Report, config.Rules)
	if err != nil {
		return nil, config, err
	}
	for _, path := range config.IgnorePaths {
		engine.IgnorePath(path)
	}

	return engine, config, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) (*internal.Result, error),
) ([]*internal.Result, error) {
	var results []*internal.Result
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	opts Options,
	processor func(LintEngine, string) (*internal.Result, error),
) ([]*internal.Result, error) {
	var results []*internal.Result
	for _, path := range paths {
		pathResults, err := ProcessPath(ctx, logger, engine, path, opts, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, pathResults...)
	}

	return results, nil
}

// ProcessPath checks a single file, or every target file under a directory.
// Results are returned in path order.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	opts Options,
	processor func(LintEngine, string) (*internal.Result, error),
) ([]*internal.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	// an explicitly named file is checked whatever its extension
	if !info.IsDir() {
		result, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return compact([]*internal.Result{result}), nil
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = finder.DefaultExtensions
	}
	files, err := finder.New(path, extensions...).Find()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetVisibility(opts.Progress != nil),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]*internal.Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		i, fp := i, file.Path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer bar.Add(1)

			result, err := processor(engine, fp)
			if err != nil {
				// one unreadable file does not abort the directory
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				return nil
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()

	return compact(results), nil
}

func compact(results []*internal.Result) []*internal.Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func ProcessFile(engine LintEngine, filePath string) (*internal.Result, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) (*internal.Result, error) {
	return engine.RunSource(source)
}

// Config represents the configuration file.
type Config struct {
	Name        string                   `yaml:"name"`
	Extensions  []string                 `yaml:"extensions"`
	IgnorePaths []string                 `yaml:"ignore_paths,omitempty"`
	Report      report.Options           `yaml:"report"`
	Rules       map[string]tt.ConfigRule `yaml:"rules"`
}

func DefaultConfig() Config {
	return Config{
		Name:       "bracecheck",
		Extensions: append([]string(nil), finder.DefaultExtensions...),
		Report:     report.DefaultOptions(),
		Rules: map[string]tt.ConfigRule{
			report.UnexpectedClosingBrace: {Severity: tt.SeverityError},
			report.UnmatchedOpenBrace:     {Severity: tt.SeverityError},
			report.UnclosedInterpolation:  {Severity: tt.SeverityError},
		},
	}
}

// LoadConfig reads the configuration file at configurationPath on top of
// DefaultConfig. An empty path, or a missing file at DefaultConfigPath,
// yields the defaults.
func LoadConfig(configurationPath string) (Config, error) {
	config := DefaultConfig()
	if configurationPath == "" {
		return config, nil
	}

	f, err := os.Open(configurationPath)
	if os.IsNotExist(err) && configurationPath == DefaultConfigPath {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil && err != io.EOF {
		return config, fmt.Errorf("error decoding %s: %w", configurationPath, err)
	}

	return config, nil
}
