package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string
	Cameras        string // comma-separated camera ids
	Thresholds     string // "warning,alert" in days
	OnlyExceptions bool
	Force          bool
	NonInteractive bool
}

var initOpts InitOptions

// initCmd writes a starter config.
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter config file",
	Long: `Write a starter config with the default color scheme.

The format follows the file extension: .yaml and .yml write YAML, anything
else writes INI. Without a terminal, or with --non-interactive, the values come
from flags.

Examples:
  rmsmonitor init
  rmsmonitor init cameras.yaml
  rmsmonitor init --cameras UK0006,UK000F --thresholds 7,30 --non-interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		opts.Path = configArg(args)
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.NonInteractive = true
		}
		return Init(cmd.OutOrStdout(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Cameras, "cameras", "", "comma-separated camera ids")
	initCmd.Flags().StringVar(&initOpts.Thresholds, "thresholds", "7,30", "warning and alert thresholds in days")
	initCmd.Flags().BoolVar(&initOpts.OnlyExceptions, "only-exceptions", false, "hide cameras that are up to date")
	initCmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "skip prompts and use flag values")

	rootCmd.AddCommand(initCmd)
}

// Init creates a starter config file.
func Init(out io.Writer, opts InitOptions) error {
	path := opts.Path
	if path == "" {
		path = config.DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite.")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite.")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		opts.Force = true
	}

	if !opts.NonInteractive {
		if err := promptStarter(&opts); err != nil {
			return err
		}
	}

	starter, err := starterFromOptions(opts)
	if err != nil {
		return err
	}

	if err := config.WriteStarter(path, starter, opts.Force); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Wrote %s\n", ui.SymbolSuccess, path)
	if path == config.DefaultConfigFile {
		fmt.Fprintln(out, "Run 'rmsmonitor' to check your cameras.")
	} else {
		fmt.Fprintf(out, "Run 'rmsmonitor %s' to check your cameras.\n", path)
	}
	return nil
}

// promptStarter asks for the starter values, pre-filled from flags.
func promptStarter(opts *InitOptions) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Camera ids").
				Description("Comma-separated station ids, like UK0006,UK000F").
				Placeholder("UK0006,UK000F").
				Value(&opts.Cameras).
				Validate(func(s string) error {
					if len(splitList(s)) == 0 {
						return fmt.Errorf("at least one camera id is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Thresholds").
				Description("Warning and alert age in days").
				Placeholder("7,30").
				Value(&opts.Thresholds).
				Validate(func(s string) error {
					if _, err := config.ParseThresholds(splitList(s)); err != nil {
						return fmt.Errorf("use two whole numbers like 7,30 with the warning first")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Only report cameras that need attention?").
				Value(&opts.OnlyExceptions),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive.")
	}
	return nil
}

func starterFromOptions(opts InitOptions) (config.Starter, error) {
	cameras := splitList(opts.Cameras)
	if len(cameras) == 0 {
		return config.Starter{}, errors.New(errors.ErrConfig,
			"No cameras given",
			"Pass --cameras UK0006,UK000F or run init in a terminal.")
	}

	th, err := config.ParseThresholds(splitList(opts.Thresholds))
	if err != nil {
		return config.Starter{}, err
	}

	return config.Starter{
		Cameras:              cameras,
		Thresholds:           th,
		ReportOnlyExceptions: opts.OnlyExceptions,
	}, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
