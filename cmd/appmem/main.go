package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/srodi/appmem/pkg/collector/proc"
	"github.com/srodi/appmem/pkg/collector/psutil"
	"github.com/srodi/appmem/pkg/report"
	"github.com/srodi/appmem/pkg/resolve"
	"github.com/srodi/appmem/pkg/types"
	"github.com/srodi/appmem/pkg/ui"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitBadUsage = 2
)

type snapshotter interface {
	Snapshot(ctx context.Context) (types.Snapshot, error)
}

// newSource allows tests to replace the process source.
var newSource = func(cfg runConfig, log *zap.Logger) (snapshotter, error) {
	if cfg.source == sourcePsutil {
		return psutil.NewCollector(log), nil
	}
	c, err := proc.NewCollector(cfg.procRoot, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "appmem: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, types.ErrConfig):
		return exitBadUsage
	default:
		return exitFailure
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appmem [limit]",
		Short: "Report memory usage grouped by application",
		Long: `appmem sums the resident memory of every process and groups it by application
name, so 48 chrome processes show up as one row. Java processes are told
apart by the archive or main class they run (see --java-by).

limit caps the number of rows (default 20, 0 for all). Rows past the limit
are dropped rather than folded into an "other" row, so the cumulative
percentage of the last row stays below 100% when output is truncated; the
footer still reports the full total. For a live view, run it under watch(1).

Every flag can also be set through an APPMEM_<FLAG> environment variable
(for example APPMEM_JAVA_BY=main) or the file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", types.ErrConfig, err)
	})
	registerFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		cfg, err := loadConfig(v, args)
		if err != nil {
			return err
		}

		log := newLogger(stderr, cfg.verbose)
		defer func() { _ = log.Sync() }()

		src, err := newSource(cfg, log)
		if err != nil {
			return err
		}
		snap, err := src.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		rep := report.Build(snap, resolve.New(cfg.javaBy, cfg.launchers), cfg.limit)
		log.Debug("report built",
			zap.Int("processes", rep.Processes), zap.Int("groups", rep.Groups), zap.Int("rows", len(rep.Rows)))

		return ui.Render(stdout, cfg.format, rep, tableOptions(stdout, cfg))
	}
	return cmd
}

func tableOptions(w io.Writer, cfg runConfig) ui.TableOptions {
	f, ok := w.(*os.File)
	if !ok {
		return ui.TableOptions{}
	}
	if cfg.noColor {
		color.NoColor = true
	}
	tty, width := ui.DetectTerminal(int(f.Fd()))
	return ui.TableOptions{Color: tty && !color.NoColor, Width: width}
}

// newLogger writes human readable diagnostics to w. Only warnings are shown
// unless verbose is set.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}
	config := zap.NewDevelopmentEncoderConfig()
	config.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}
