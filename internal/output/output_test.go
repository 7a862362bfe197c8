package output

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "TABLE", want: ModeTable},
		{in: " widget ", want: ModeWidget},
		{in: "json", want: ModeJSON},
		{in: "yaml", want: ModeYAML},
		{in: "gui", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				assert.Contains(t, err.Error(), "auto, table, widget, json, yaml")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectMode(t *testing.T) {
	tty := Environment{StdinTTY: true, StdoutTTY: true, Term: "xterm-256color", GOOS: "linux"}

	tests := []struct {
		name  string
		mode  Mode
		force bool
		env   Environment
		want  Mode
	}{
		{name: "interactive terminal", mode: ModeAuto, env: tty, want: ModeWidget},
		{name: "empty mode is auto", mode: "", env: tty, want: ModeWidget},
		{name: "force terminal", mode: ModeAuto, force: true, env: tty, want: ModeTable},
		{name: "stdin piped", mode: ModeAuto, env: Environment{StdoutTTY: true, Term: "xterm", GOOS: "linux"}, want: ModeTable},
		{name: "stdout piped", mode: ModeAuto, env: Environment{StdinTTY: true, Term: "xterm", GOOS: "linux"}, want: ModeTable},
		{name: "dumb terminal", mode: ModeAuto, env: Environment{StdinTTY: true, StdoutTTY: true, Term: "dumb", GOOS: "linux"}, want: ModeTable},
		{name: "no terminal platform", mode: ModeAuto, env: Environment{StdinTTY: true, StdoutTTY: true, Term: "xterm", GOOS: "plan9"}, want: ModeTable},
		{name: "explicit widget wins", mode: ModeWidget, force: true, env: Environment{}, want: ModeWidget},
		{name: "explicit table wins", mode: ModeTable, env: tty, want: ModeTable},
		{name: "explicit json", mode: ModeJSON, env: tty, want: ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectMode(tt.mode, tt.force, tt.env))
		})
	}
}

func TestModeMachine(t *testing.T) {
	assert.True(t, ModeJSON.Machine())
	assert.True(t, ModeYAML.Machine())
	assert.False(t, ModeTable.Machine())
	assert.False(t, ModeWidget.Machine())
}

func sampleReport() status.Report {
	up := time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)
	n := 4
	return status.Report{
		GeneratedAt: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		Thresholds:  status.Thresholds{Warning: 7, Alert: 30},
		Rows: []status.Row{
			{CameraID: "CD0001", LastUpload: &up, Detections: &n, Severity: status.SeverityCalibrationAlert},
			{CameraID: "AB0001", Severity: status.SeverityError, Notes: []string{"data for AB0001 not available"}},
		},
		Suppressed: 2,
	}
}

func TestEncodingPresenter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := &EncodingPresenter{Out: &buf, Format: ModeJSON}
	require.NoError(t, p.Present(context.Background(), sampleReport()))

	var got struct {
		Success bool `json:"success"`
		Data    struct {
			GeneratedAt time.Time `json:"generated_at"`
			Thresholds  struct {
				Warning int `json:"warning_days"`
				Alert   int `json:"alert_days"`
			} `json:"thresholds"`
			Rows []struct {
				Camera     string     `json:"camera"`
				LastUpload *time.Time `json:"last_upload"`
				Detections *int       `json:"detections"`
				Status     *string    `json:"status"`
				Severity   string     `json:"severity"`
				Notes      []string   `json:"notes"`
			} `json:"rows"`
			Suppressed int            `json:"suppressed"`
			Counts     map[string]int `json:"counts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.True(t, got.Success)
	assert.Equal(t, 7, got.Data.Thresholds.Warning)
	assert.Equal(t, 2, got.Data.Suppressed)
	require.Len(t, got.Data.Rows, 2)
	assert.Equal(t, "CD0001", got.Data.Rows[0].Camera)
	assert.Equal(t, "calibration_alert", got.Data.Rows[0].Severity)
	assert.Equal(t, 4, *got.Data.Rows[0].Detections)
	assert.Nil(t, got.Data.Rows[0].Status)
	assert.Equal(t, "AB0001", got.Data.Rows[1].Camera)
	assert.Nil(t, got.Data.Rows[1].LastUpload)
	assert.Equal(t, []string{"data for AB0001 not available"}, got.Data.Rows[1].Notes)
	assert.Equal(t, map[string]int{"calibration_alert": 1, "error": 1}, got.Data.Counts)

	assert.Contains(t, buf.String(), `"last_upload": null`)
}

func TestEncodingPresenter_YAML(t *testing.T) {
	var buf bytes.Buffer
	p := &EncodingPresenter{Out: &buf, Format: ModeYAML}
	require.NoError(t, p.Present(context.Background(), sampleReport()))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, true, got["success"])
	data := got["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "CD0001", first["camera"])
	assert.Equal(t, "calibration_alert", first["severity"])
	assert.Equal(t, 2, data["suppressed"])
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.WrapWithCode(stderrors.New("no such file"), errors.ErrConfig, "Failed to read config file", "Check the path")
	require.NoError(t, WriteError(&buf, ModeJSON, err))

	var env Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, errors.ErrConfig, env.Error.Code)
	assert.Equal(t, "Failed to read config file: no such file", env.Error.Message)
	assert.Equal(t, "Check the path", env.Error.Suggestion)

	buf.Reset()
	require.NoError(t, WriteError(&buf, ModeJSON, stderrors.New("plain")))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, errors.ErrExec, env.Error.Code)
	assert.Equal(t, "plain", env.Error.Message)
}
