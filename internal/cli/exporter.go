package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/gmn-tools/rmsmonitor/internal/metrics"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// DefaultListenAddr is where the exporter serves /metrics.
const DefaultListenAddr = ":9877"

var (
	exporterListenFlag  string
	exporterServiceFlag string
)

// exporterCmd serves camera status as Prometheus metrics.
var exporterCmd = &cobra.Command{
	Use:   "exporter [config-file]",
	Short: "Serve camera status as Prometheus metrics",
	Long: `Start a long-running HTTP server exposing camera ages and severities on
/metrics. Every scrape polls the status pages again.

The exporter can be installed as a system service with --service.

Examples:
  rmsmonitor exporter
  rmsmonitor exporter /etc/rmsmonitor.ini --listen 127.0.0.1:9877
  sudo rmsmonitor exporter /etc/rmsmonitor.ini --service install`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exporterCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), configArg(args), exporterListenFlag, exporterServiceFlag)
	},
}

func init() {
	exporterCmd.Flags().StringVar(&exporterListenFlag, "listen", DefaultListenAddr, "address to serve /metrics on")
	exporterCmd.Flags().StringVar(&exporterServiceFlag, "service", "", "service action: "+strings.Join(service.ControlAction[:], ", "))

	rootCmd.AddCommand(exporterCmd)
}

// exporterCommand validates the config, then either controls the system
// service or runs the exporter in the foreground.
func exporterCommand(stdout, stderr io.Writer, cfgPath, listen, action string) error {
	if err := validServiceAction(action); err != nil {
		return err
	}

	if cfgPath == "" {
		cfgPath = config.DefaultConfigFile
	}
	// Services start in another working directory.
	abs, err := filepath.Abs(cfgPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't resolve config path %s", cfgPath),
			"Pass an absolute path to the config file.")
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return err
	}

	log := logger.NewWriterLogger(stderr, "[exporter]", verboseFlag)
	prg := &exporterProgram{cfg: cfg, listen: listen, log: log}

	s, err := service.New(prg, serviceConfig(abs, listen))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Can't set up the exporter service",
			"Run without --service to start the exporter in the foreground.")
	}

	if action != "" {
		if err := service.Control(s, action); err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				fmt.Sprintf("Failed to %s service", action),
				"Service control usually needs root or administrator rights.")
		}
		fmt.Fprintf(stdout, "Service action '%s' completed successfully.\n", action)
		return nil
	}

	if err := s.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Exporter stopped with an error",
			"Check that the listen address is free.")
	}
	return nil
}

// serviceConfig describes the installed service. The arguments replay this
// command with an absolute config path.
func serviceConfig(cfgPath, listen string) *service.Config {
	return &service.Config{
		Name:        "rmsmonitor-exporter",
		DisplayName: "rmsmonitor Prometheus exporter",
		Description: "Exposes meteor camera upload and calibration status to Prometheus",
		Arguments:   []string{"exporter", cfgPath, "--listen", listen},
	}
}

func validServiceAction(action string) error {
	if action == "" {
		return nil
	}
	for _, a := range service.ControlAction {
		if a == action {
			return nil
		}
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown service action '%s'", action),
		"Use one of: "+strings.Join(service.ControlAction[:], ", "))
}

// exporterProgram implements service.Interface. Start must not block, so the
// HTTP server runs in its own goroutine until Stop cancels it.
type exporterProgram struct {
	cfg    *config.Config
	listen string
	log    logger.Logger

	cancel context.CancelFunc
	done   chan error
}

func (p *exporterProgram) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	poll := newPoller(p.cfg, p.log, "")
	collector := metrics.NewCollector(poll.Snapshot, p.log)

	go func() {
		err := metrics.Serve(ctx, p.listen, collector, p.log)
		if err != nil {
			p.log.Error("%v", err)
		}
		p.done <- err
	}()
	return nil
}

func (p *exporterProgram) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}
