package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/bracecheck/internal"
	"github.com/gnolang/bracecheck/internal/report"
	"github.com/gnolang/bracecheck/lint"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-check files whenever they are written",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, config, err := lint.New(logger, cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		applyIgnores(engine, ignoreRules, ignorePaths)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := func(result *internal.Result, err error) {
			if err != nil {
				logger.Error("Error checking file", zap.Error(err))
				return
			}
			fmt.Printf("==> %s\n", result.Filename)
			if err := report.WriteText(os.Stdout, result.Verdict, result.Source.Lines, config.Report); err != nil {
				logger.Error("Error writing report", zap.Error(err))
			}
		}

		if err := engine.StartWatching(args, config.Extensions, handler); err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}
		logger.Info("Watching for changes", zap.Strings("dirs", args))

		<-ctx.Done()
		if err := engine.StopWatching(); err != nil {
			logger.Error("Error stopping watcher", zap.Error(err))
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	watchCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}
