package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/status"
)

// RefreshFunc fetches and classifies the cameras again.
type RefreshFunc func(ctx context.Context) (status.Report, error)

// Lines above and below the scrolling table.
const (
	headerHeight = 2
	footerHeight = 2
)

// tableHeaderLines is the number of table lines before the first data row:
// top border, column titles and the title separator.
const tableHeaderLines = 3

// Model is the Bubble Tea model for the camera widget.
type Model struct {
	ctx     context.Context
	report  status.Report
	palette config.Palette
	columns []config.Column
	refresh RefreshFunc

	selected   int
	width      int
	height     int
	showHelp   bool
	quitting   bool
	refreshing bool
	lastErr    error

	table         viewport.Model
	viewportReady bool
}

// reportMsg carries the result of a refresh.
type reportMsg struct {
	report status.Report
	err    error
	time   time.Time
}

// NewModel creates a widget model showing report. refresh may be nil, in
// which case the r key does nothing.
func NewModel(ctx context.Context, report status.Report, palette config.Palette, columns []config.Column, refresh RefreshFunc) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(columns) == 0 {
		columns = config.AllColumns
	}
	return Model{
		ctx:     ctx,
		report:  report,
		palette: palette,
		columns: columns,
		refresh: refresh,
	}
}

// Init implements tea.Model. The first report is already loaded.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			m.syncViewport()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.viewportReady {
			m.table = viewport.New(m.width, viewportHeight)
			m.table.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.table.Width = m.width
			m.table.Height = viewportHeight
		}
		m.syncViewport()

	case reportMsg:
		m.refreshing = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.report = msg.report
			m.selectRow(m.selected)
		}
		m.syncViewport()
	}

	return m, nil
}

// View renders the widget.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderWidget()
}

// Report returns the report currently on screen.
func (m Model) Report() status.Report {
	return m.report
}

// Selected returns the index of the highlighted row.
func (m Model) Selected() int {
	return m.selected
}

// Refreshing reports whether a refresh is in flight.
func (m Model) Refreshing() bool {
	return m.refreshing
}

// startRefresh returns the command that re-runs the fetch, or nil when a
// refresh is already running or none is configured.
func (m *Model) startRefresh() tea.Cmd {
	if m.refresh == nil || m.refreshing {
		return nil
	}
	m.refreshing = true

	ctx, refresh := m.ctx, m.refresh
	return func() tea.Msg {
		report, err := refresh(ctx)
		return reportMsg{report: report, err: err, time: time.Now()}
	}
}

// selectRow moves the selection to i, clamped to the rows on screen.
func (m *Model) selectRow(i int) {
	last := len(m.report.Rows) - 1
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	m.selected = i
}

// syncViewport re-renders the table into the viewport and scrolls so the
// selected row stays visible.
func (m *Model) syncViewport() {
	if !m.viewportReady {
		return
	}
	m.table.SetContent(m.renderTable())

	line := m.selected + tableHeaderLines
	switch {
	case m.selected == 0:
		m.table.SetYOffset(0)
	case line < m.table.YOffset:
		m.table.SetYOffset(line)
	case line >= m.table.YOffset+m.table.Height:
		m.table.SetYOffset(line - m.table.Height + 1)
	}
}
