package cli

import (
	"testing"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidServiceAction(t *testing.T) {
	for _, action := range []string{"", "install", "uninstall", "start", "stop", "restart"} {
		assert.NoError(t, validServiceAction(action), action)
	}

	err := validServiceAction("enable")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "Unknown service action 'enable'")
}

func TestServiceConfig(t *testing.T) {
	cfg := serviceConfig("/etc/rmsmonitor.ini", ":9877")
	assert.Equal(t, "rmsmonitor-exporter", cfg.Name)
	assert.Equal(t, []string{"exporter", "/etc/rmsmonitor.ini", "--listen", ":9877"}, cfg.Arguments)
}

func TestExporterCommand_RejectsBadInput(t *testing.T) {
	err := exporterCommand(nil, nil, "missing.ini", DefaultListenAddr, "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown service action")

	err = exporterCommand(nil, nil, t.TempDir()+"/missing.ini", DefaultListenAddr, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.ini missing")
}

func TestExporterProgram_StartStop(t *testing.T) {
	cfg := &config.Config{
		Cameras: []string{"AB0001"},
		Columns: config.AllColumns,
		Sources: config.Sources{IndexURL: "http://127.0.0.1:1/{segment}/index.html"},
		Markers: config.DefaultMarkers(),
	}
	log := logger.NewBufferLogger()
	prg := &exporterProgram{cfg: cfg, listen: "127.0.0.1:0", log: log}

	require.NoError(t, prg.Start(nil))
	require.NoError(t, prg.Stop(nil))
	assert.True(t, log.HasLevel("info"))
}

func TestExporterProgram_StopBeforeStart(t *testing.T) {
	prg := &exporterProgram{}
	assert.NoError(t, prg.Stop(nil))
}
