package ui

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/muesli/termenv"
)

// NotAvailable is printed for absent values.
const NotAvailable = "n/a"

// TimeLayout is how timestamps are shown in tables.
const TimeLayout = "2006-01-02 15:04:05"

// MaxStatusWidth caps the status column so one chatty camera can't widen the
// whole table.
const MaxStatusWidth = 40

// FormatTime renders t in UTC, or n/a when absent.
func FormatTime(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return t.UTC().Format(TimeLayout)
}

// Cell returns the display text of one column of row.
func Cell(row status.Row, col config.Column) string {
	switch col {
	case config.ColumnID:
		return row.CameraID
	case config.ColumnUpload:
		return FormatTime(row.LastUpload)
	case config.ColumnCalibration:
		return FormatTime(row.LastCalibration)
	case config.ColumnDetections:
		if row.Detections == nil {
			return NotAvailable
		}
		return strconv.Itoa(*row.Detections)
	case config.ColumnStatus:
		if row.Status == nil {
			return NotAvailable
		}
		return truncate(*row.Status, MaxStatusWidth)
	}
	return ""
}

// Cells projects row onto cols.
func Cells(row status.Row, cols []config.Column) []string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = Cell(row, c)
	}
	return cells
}

// ColumnWidths returns the width of each column: the widest of its title and
// all of its cells.
func ColumnWidths(rows []status.Row, cols []config.Column) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Title())
	}
	for _, row := range rows {
		for i, cell := range Cells(row, cols) {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// TablePresenter prints a fixed-width bordered table, one line per camera,
// colored with the palette pair of the row's severity.
type TablePresenter struct {
	Out     io.Writer
	Palette config.Palette
	Columns []config.Column
	NoColor bool

	// Renderer overrides terminal detection on Out. Tests use it to force a
	// color profile.
	Renderer *lipgloss.Renderer
}

// Present writes the table for report.
func (p *TablePresenter) Present(_ context.Context, report status.Report) error {
	if _, err := io.WriteString(p.Out, p.Render(report)); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Failed to write status table",
			"Check that stdout is writable.")
	}
	return nil
}

// Render returns the table as a string.
func (p *TablePresenter) Render(report status.Report) string {
	r := p.renderer()
	cols := p.columns()
	widths := ColumnWidths(report.Rows, cols)

	inner := 0
	for _, w := range widths {
		inner += w
	}
	inner += 2 * (len(widths) - 1)

	frame := r.NewStyle().Foreground(ColorInk).Background(ColorPrimary)

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title()
	}

	var b strings.Builder
	b.WriteString(frame.Render(border('=', inner)) + "\n")
	b.WriteString(frame.Render(line(titles, widths)) + "\n")
	b.WriteString(frame.Render(border('-', inner)) + "\n")

	for _, row := range report.Rows {
		pair := p.Palette.For(row.Severity)
		style := r.NewStyle().
			Foreground(lipgloss.Color(pair.Foreground)).
			Background(lipgloss.Color(pair.Background))
		b.WriteString(style.Render(line(Cells(row, cols), widths)) + "\n")
	}

	b.WriteString(frame.Render(border('=', inner)) + "\n")
	return b.String()
}

func (p *TablePresenter) renderer() *lipgloss.Renderer {
	r := p.Renderer
	if r == nil {
		r = lipgloss.NewRenderer(p.Out)
	}
	if p.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func (p *TablePresenter) columns() []config.Column {
	if len(p.Columns) == 0 {
		return config.AllColumns
	}
	return p.Columns
}

func border(fill rune, width int) string {
	return "|" + strings.Repeat(string(fill), width) + "|"
}

func line(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = padRight(c, widths[i])
	}
	return "|" + strings.Join(padded, "  ") + "|"
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
