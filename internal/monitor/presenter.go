package monitor

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/status"
)

// WidgetPresenter shows a report in the full-screen widget until the user
// quits.
type WidgetPresenter struct {
	Palette config.Palette
	Columns []config.Column
	Refresh RefreshFunc

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// Present runs the widget. Cancelling ctx closes it without an error.
func (p *WidgetPresenter) Present(ctx context.Context, report status.Report) error {
	model := NewModel(ctx, report, p.Palette, p.Columns, p.Refresh)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrRender,
			"Status widget failed",
			"Run with --format table to print a plain table instead.")
	}
	return nil
}
