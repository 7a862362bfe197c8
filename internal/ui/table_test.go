package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

var testPalette = config.Palette{
	Normal:             config.ColorPair{Foreground: "0", Background: "2"},
	UploadWarning:      config.ColorPair{Foreground: "0", Background: "3"},
	UploadAlert:        config.ColorPair{Foreground: "7", Background: "1"},
	CalibrationWarning: config.ColorPair{Foreground: "0", Background: "6"},
	CalibrationAlert:   config.ColorPair{Foreground: "7", Background: "5"},
	Error:              config.ColorPair{Foreground: "7", Background: "1"},
}

func sampleReport() status.Report {
	return status.Report{
		Rows: []status.Row{
			{
				CameraID:        "AB0001",
				LastUpload:      ts("2024-01-10 03:00:00"),
				LastCalibration: ts("2024-01-01 00:00:00"),
				Severity:        status.SeverityNormal,
			},
			{
				CameraID:   "AB0002",
				LastUpload: ts("2024-01-09 03:00:00"),
				Severity:   status.SeverityCalibrationAlert,
			},
			{
				CameraID: "ZZ0001",
				Severity: status.SeverityError,
			},
		},
	}
}

func TestTablePresenter_PlainLayout(t *testing.T) {
	var buf bytes.Buffer
	p := &TablePresenter{
		Out:     &buf,
		Palette: testPalette,
		Columns: []config.Column{config.ColumnID, config.ColumnUpload, config.ColumnCalibration},
		NoColor: true,
	}

	require.NoError(t, p.Present(context.Background(), sampleReport()))

	want := strings.Join([]string{
		"|" + strings.Repeat("=", 49) + "|",
		"|Station  Last Upload" + strings.Repeat(" ", 10) + "Last Calibration   |",
		"|" + strings.Repeat("-", 49) + "|",
		"|AB0001   2024-01-10 03:00:00  2024-01-01 00:00:00|",
		"|AB0002   2024-01-09 03:00:00  n/a" + strings.Repeat(" ", 16) + "|",
		"|ZZ0001   n/a" + strings.Repeat(" ", 16) + "  n/a" + strings.Repeat(" ", 16) + "|",
		"|" + strings.Repeat("=", 49) + "|",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTablePresenter_AllLinesSameWidth(t *testing.T) {
	report := sampleReport()
	report.Rows[0].Detections = intp(12)
	report.Rows[0].Status = strp("capturing")

	p := &TablePresenter{Out: &bytes.Buffer{}, Palette: testPalette, NoColor: true}
	out := p.Render(report)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 7)
	for _, l := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l), "line %q", l)
	}
	assert.Contains(t, out, "Detections")
	assert.Contains(t, out, "capturing")
	assert.Contains(t, lines[3], "12")
}

func TestTablePresenter_Colors(t *testing.T) {
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	r.SetColorProfile(termenv.ANSI256)

	p := &TablePresenter{Out: &buf, Palette: testPalette, Renderer: r}
	require.NoError(t, p.Present(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "AB0001")

	prefix := func(fg, bg string) string {
		styled := r.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg)).Render("x")
		return strings.Split(styled, "x")[0]
	}
	normal := prefix("0", "2")
	alert := prefix("7", "5")
	require.NotEmpty(t, normal)
	require.NotEqual(t, normal, alert)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.True(t, strings.HasPrefix(lines[3], normal+"|AB0001"), "normal row: %q", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], alert+"|AB0002"), "calibration alert row: %q", lines[4])
}

func TestTablePresenter_NoColorOverridesRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	r.SetColorProfile(termenv.ANSI256)

	p := &TablePresenter{Out: &buf, Palette: testPalette, Renderer: r, NoColor: true}
	require.NoError(t, p.Present(context.Background(), sampleReport()))

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTablePresenter_EmptyReport(t *testing.T) {
	p := &TablePresenter{Out: &bytes.Buffer{}, Palette: testPalette, Columns: []config.Column{config.ColumnID}, NoColor: true}
	out := p.Render(status.Report{})

	assert.Equal(t, "|=======|\n|Station|\n|-------|\n|=======|\n", out)
}

func TestCell(t *testing.T) {
	row := status.Row{
		CameraID:   "AB0001",
		LastUpload: ts("2024-01-10 03:00:00"),
		Detections: intp(0),
		Status:     strp(strings.Repeat("x", 60)),
	}

	assert.Equal(t, "AB0001", Cell(row, config.ColumnID))
	assert.Equal(t, "2024-01-10 03:00:00", Cell(row, config.ColumnUpload))
	assert.Equal(t, NotAvailable, Cell(row, config.ColumnCalibration))
	assert.Equal(t, "0", Cell(row, config.ColumnDetections))
	assert.Equal(t, MaxStatusWidth, lipgloss.Width(Cell(row, config.ColumnStatus)))
	assert.True(t, strings.HasSuffix(Cell(row, config.ColumnStatus), "…"))

	assert.Equal(t, []string{"AB0001", NotAvailable}, Cells(row, []config.Column{config.ColumnID, config.ColumnCalibration}))
}

func TestFormatTime_UTC(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	local := time.Date(2024, 1, 10, 5, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-10 03:00:00", FormatTime(&local))
	assert.Equal(t, NotAvailable, FormatTime(nil))
}

func TestColumnWidths(t *testing.T) {
	rows := []status.Row{{CameraID: "AB0001"}, {CameraID: "LONGCAMERA01"}}
	assert.Equal(t, []int{12, 11}, ColumnWidths(rows, []config.Column{config.ColumnID, config.ColumnUpload}))
}
