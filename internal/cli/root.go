// Package cli wires configuration, the GPU probe, the sampler and a renderer
// into the sysgraph command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysgraph/internal/config"
	"github.com/Dicklesworthstone/sysgraph/internal/export"
	"github.com/Dicklesworthstone/sysgraph/internal/gpu"
	"github.com/Dicklesworthstone/sysgraph/internal/logging"
	"github.com/Dicklesworthstone/sysgraph/internal/sampler"
	"github.com/Dicklesworthstone/sysgraph/internal/source"
	"github.com/Dicklesworthstone/sysgraph/internal/ui"
)

// Version info, set by main.
var (
	version = "dev"
	commit  = "none"
)

// SetVersionInfo records build metadata for --version.
func SetVersionInfo(v, c string) {
	version, commit = v, c
}

// NewRootCommand builds the sysgraph command.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sysgraph",
		Short: "Real-time CPU, memory, disk and GPU charts",
		Long: `sysgraph samples host utilization once per interval and draws each
metric as a scrolling chart over a fixed window.

Every flag can also be set with a SYSGRAPH_* environment variable
(e.g. SYSGRAPH_INTERVAL=2) or in a YAML file passed with --config.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "sysgraph:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	// The TUI owns the terminal, so logs only go somewhere when asked.
	logSink := stderr
	if !cfg.JSON && !cfg.JSONStream {
		logSink = nil
	}
	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile, logSink)
	if err != nil {
		return err
	}
	defer closeLog()

	avail := gpu.Probe(ctx, gpu.Options{
		Disabled:    !cfg.EnableGPU,
		LibraryPath: cfg.NVMLPath,
	}, logger.With("component", "gpu"))
	defer func() {
		if err := avail.Close(); err != nil {
			logger.Warn("gpu close", "error", err)
		}
	}()

	s, err := newSampler(cfg, avail, logger)
	if err != nil {
		return err
	}

	switch {
	case cfg.JSON:
		snap, ok := s.Tick(ctx)
		if !ok {
			return ctx.Err()
		}
		export.NewWriter(stdout, logger).Publish(snap)
		return nil
	case cfg.JSONStream:
		s.Run(ctx, export.NewWriter(stdout, logger))
		return nil
	default:
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		return ui.Run(s.Stream(ctx), cancel, cfg.Window)
	}
}

func newSampler(cfg config.Config, avail gpu.Availability, logger *slog.Logger) (*sampler.Sampler, error) {
	gpuSrc := source.NewGPU(avail)
	return sampler.New(sampler.Options{
		Interval: cfg.Interval,
		Window:   cfg.Window,
		Fallback: cfg.Fallback,
		Prefill:  cfg.PrefillValue(),
		GPU:      gpuSrc.Status(),
		Logger:   logger.With("component", "sampler"),
	},
		source.NewCPU(cfg.CPUWindow),
		source.NewMemory(),
		source.NewDisk(cfg.DiskPath),
		gpuSrc,
	)
}
