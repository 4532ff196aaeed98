// Package main provides the CLI entry point for icecale.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/five82/icecale"
	"github.com/five82/icecale/internal/config"
	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/logging"
	"github.com/five82/icecale/internal/reporter"
	"github.com/five82/icecale/internal/util"
	"github.com/spf13/cobra"
)

const appName = "icecale"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:           appName + " <input_video> <output_video>",
		Short:         "Upscale a video 4x with Real-ESRGAN, capped at 2560x1440",
		Args:          usageArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1])
		},
	}
}

// usageArgs requires exactly the input and output paths.
func usageArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return fmt.Errorf("Usage: %s <input_video> <output_video>", appName)
	}
	return nil
}

func run(ctx context.Context, input, output string) error {
	exeDir, err := util.ExecutableDir()
	if err != nil {
		return ierrors.NewIOError("cannot locate the running executable", err)
	}

	cfg, err := config.Load(exeDir)
	if err != nil {
		return ierrors.NewConfigError("invalid configuration", err)
	}

	logger, err := logging.Setup(cfg.LogDir, cfg.Verbose)
	if err != nil {
		return ierrors.NewConfigError("failed to set up logging", err)
	}
	defer func() { _ = logger.Close() }()
	logging.SetGlobal(logger)

	up, err := icecale.New(icecale.WithConfig(cfg), icecale.WithLogger(logger))
	if err != nil {
		return ierrors.NewConfigError("invalid configuration", err)
	}

	_, err = up.Upscale(ctx, input, output, newReporter(cfg.ProgressFormat))
	return err
}

func newReporter(format string) reporter.Reporter {
	if format == config.ProgressJSON {
		return reporter.NewJSONReporter()
	}
	return reporter.NewTerminalReporter()
}

// formatError renders err as the single diagnostic line printed on failure.
// Line breaks in captured tool output are folded so the line stays whole.
func formatError(err error) string {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	return "Error: " + strings.Join(lines, " | ")
}
