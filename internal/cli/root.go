package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/output"
	"github.com/gmn-tools/rmsmonitor/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	formatFlag        string
	forceTerminalFlag bool
	noColorFlag       bool
	textfileFlag      string
	columnsFlag       string
	verboseFlag       bool
)

// rootCmd checks the configured cameras and shows their status.
var rootCmd = &cobra.Command{
	Use:   "rmsmonitor [config-file]",
	Short: "Check upload and calibration status of meteor cameras",
	Long: `Fetch the public status pages of a meteor camera network and report, for
every configured camera, when it last uploaded, when it last calibrated, how many
meteors it detected and its status line. Rows are colored by how stale the
upload and calibration are compared to the configured day thresholds.

On an interactive terminal the result is shown in a scrollable widget;
otherwise a fixed-width table is printed. The config file defaults to
rmsmonitor.ini in the current directory.

Examples:
  rmsmonitor
  rmsmonitor cameras.ini --force-terminal
  rmsmonitor cameras.yaml --format json
  rmsmonitor --columns id,upload,status --textfile /var/lib/node_exporter/rms.prom`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor() {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), checkOptions{
			ConfigPath:    configArg(args),
			Format:        formatFlag,
			ForceTerminal: forceTerminalFlag,
			NoColor:       noColor(),
			Textfile:      textfileFlag,
			Columns:       columnsFlag,
			Verbose:       verboseFlag,
			Stdout:        cmd.OutOrStdout(),
			Stderr:        cmd.ErrOrStderr(),
			Progress:      progressWriter(),
			Env:           output.DetectEnvironment(),
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output (also honors NO_COLOR)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print debug diagnostics to stderr")

	rootCmd.Flags().StringVar(&formatFlag, "format", string(output.ModeAuto), "output format: auto, table, widget, json, yaml")
	rootCmd.Flags().BoolVar(&forceTerminalFlag, "force-terminal", false, "print the plain table even on an interactive terminal")
	rootCmd.Flags().StringVar(&textfileFlag, "textfile", "", "also write Prometheus metrics to this file")
	rootCmd.Flags().StringVar(&columnsFlag, "columns", "", "comma-separated columns: id, upload, calibration, detections, status")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(reportError(os.Stdout, os.Stderr, formatFlag, err))
	}
}

// reportError prints err the way the requested format expects and returns
// the process exit code. Machine formats get a failed envelope on stdout.
func reportError(stdout, stderr io.Writer, format string, err error) int {
	if mode, perr := output.ParseMode(format); perr == nil && mode.Machine() {
		if werr := output.WriteError(stdout, mode, err); werr == nil {
			return 1
		}
	}

	if _, ok := err.(*errors.Error); ok {
		fmt.Fprint(stderr, err.Error())
	} else {
		fmt.Fprintf(stderr, "%s %v\n", ui.SymbolFail, err)
	}
	return 1
}

func configArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func noColor() bool {
	return noColorFlag || os.Getenv("NO_COLOR") != ""
}

// progressWriter returns stderr when it is a terminal, so the fetch spinner
// never ends up in redirected output.
func progressWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}
