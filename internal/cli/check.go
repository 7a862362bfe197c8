package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/fetch"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/gmn-tools/rmsmonitor/internal/metrics"
	"github.com/gmn-tools/rmsmonitor/internal/monitor"
	"github.com/gmn-tools/rmsmonitor/internal/output"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/gmn-tools/rmsmonitor/internal/ui"
)

// checkOptions holds everything a status check needs from the command line.
type checkOptions struct {
	ConfigPath    string
	Format        string
	ForceTerminal bool
	NoColor       bool
	Textfile      string
	Columns       string
	Verbose       bool

	Stdout io.Writer
	Stderr io.Writer
	// Progress receives the fetch spinner. Nil disables it.
	Progress io.Writer
	Env      output.Environment
}

// runCheck loads the config, polls every camera once and presents the result.
func runCheck(ctx context.Context, opts checkOptions) error {
	requested, err := output.ParseMode(opts.Format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Columns != "" {
		cols, err := config.ParseColumns(strings.Split(opts.Columns, ","))
		if err != nil {
			return err
		}
		cfg.Columns = cols
	}

	mode := output.SelectMode(requested, cfg.ForceTerminal || opts.ForceTerminal, opts.Env)
	log := logger.NewWriterLogger(opts.Stderr, "", opts.Verbose)

	p := newPoller(cfg, log, opts.Textfile)

	var report status.Report
	if opts.Progress != nil && !mode.Machine() {
		report, err = p.reportWithSpinner(ctx, opts.Progress)
	} else {
		report, err = p.Report(ctx)
	}
	if err != nil {
		return err
	}

	if err := presenterFor(mode, cfg, opts, p).Present(ctx, report); err != nil {
		return err
	}

	if mode == output.ModeTable && len(report.Rows) == 0 && report.Suppressed > 0 {
		ui.PrintWarning(opts.Stderr, fmt.Sprintf("All %d cameras are normal; report_only_exception hides them", report.Suppressed))
	}
	return nil
}

// presenterFor picks the presenter for mode. The widget refreshes through a
// quiet copy of p so diagnostics don't scribble over the screen.
func presenterFor(mode output.Mode, cfg *config.Config, opts checkOptions, p *poller) output.Presenter {
	switch mode {
	case output.ModeJSON, output.ModeYAML:
		return &output.EncodingPresenter{Out: opts.Stdout, Format: mode}
	case output.ModeWidget:
		quiet := newPoller(cfg, logger.Noop(), p.textfile)
		return &monitor.WidgetPresenter{
			Palette: cfg.Palette,
			Columns: cfg.Columns,
			Refresh: quiet.Report,
		}
	default:
		return &ui.TablePresenter{
			Out:     opts.Stdout,
			Palette: cfg.Palette,
			Columns: cfg.Columns,
			NoColor: opts.NoColor,
		}
	}
}

// poller runs one fetch and classification pass per call.
type poller struct {
	cfg      *config.Config
	fetcher  *fetch.Fetcher
	log      logger.Logger
	textfile string

	// now is replaced in tests.
	now func() time.Time
}

func newPoller(cfg *config.Config, log logger.Logger, textfile string) *poller {
	return &poller{
		cfg:      cfg,
		fetcher:  fetch.New(cfg, log),
		log:      log,
		textfile: textfile,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot fetches and classifies every configured camera without applying
// the exception filter.
func (p *poller) Snapshot(ctx context.Context) (metrics.Snapshot, error) {
	rows, err := p.fetcher.Collect(ctx, p.cfg.Cameras)
	if err != nil {
		return metrics.Snapshot{}, errors.WrapWithCode(err, errors.ErrFetch,
			"Status check interrupted",
			"Run the check again.")
	}
	now := p.now()
	return metrics.Snapshot{
		GeneratedAt: now,
		Rows:        status.ClassifyAll(now, rows, p.cfg.Thresholds),
	}, nil
}

// Report runs a poll, writes the metrics textfile when one is configured, and
// returns the filtered report.
func (p *poller) Report(ctx context.Context) (status.Report, error) {
	snap, err := p.Snapshot(ctx)
	if err != nil {
		return status.Report{}, err
	}

	if p.textfile != "" {
		if err := metrics.WriteTextfile(p.textfile, snap); err != nil {
			return status.Report{}, err
		}
		p.log.Debug("wrote metrics to %s", p.textfile)
	}

	return status.Evaluate(snap.GeneratedAt, snap.Rows, p.cfg.Thresholds, p.cfg.ReportOnlyExceptions), nil
}

// reportWithSpinner runs Report behind a spinner on w. Diagnostics are held
// back until the spinner line is cleared.
func (p *poller) reportWithSpinner(ctx context.Context, w io.Writer) (status.Report, error) {
	held := logger.NewBufferLogger()
	quiet := *p
	quiet.log = held
	quiet.fetcher = fetch.New(p.cfg, held)

	spinner := ui.NewSpinner(w, "Fetching status pages")
	quiet.fetcher.OnSegment = func(segment string) {
		spinner.SetLabel("Fetching status pages for " + segment)
	}

	spinner.Start()
	report, err := quiet.Report(ctx)
	if err != nil {
		spinner.Fail()
	} else {
		spinner.Stop()
	}

	replay(held, p.log)
	return report, err
}

// replay forwards buffered messages to log at their original level.
func replay(from *logger.BufferLogger, to logger.Logger) {
	for _, m := range from.Messages {
		switch m.Level {
		case "debug":
			to.Debug("%s", m.Message)
		case "warn":
			to.Warn("%s", m.Message)
		case "error":
			to.Error("%s", m.Message)
		default:
			to.Info("%s", m.Message)
		}
	}
}
