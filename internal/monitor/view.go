package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/gmn-tools/rmsmonitor/internal/ui"
)

// renderWidget renders header, table and footer.
func (m Model) renderWidget() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.table.View())
	} else {
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with thresholds and generation time.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("rmsmonitor")

	generated := "never"
	if !m.report.GeneratedAt.IsZero() {
		generated = m.report.GeneratedAt.UTC().Format(ui.TimeLayout) + " UTC"
	}

	stats := LabelStyle.Render(fmt.Sprintf(" | %d cameras | warning %dd | alert %dd | generated %s",
		len(m.report.Rows)+m.report.Suppressed,
		m.report.Thresholds.Warning,
		m.report.Thresholds.Alert,
		generated))

	if m.refreshing {
		stats += MutedStyle.Render(" | refreshing...")
	}

	return HeaderStyle.Render(title + stats)
}

// renderTable renders the camera rows with lipgloss/table, one palette style
// per row.
func (m Model) renderTable() string {
	if len(m.report.Rows) == 0 {
		if m.report.Suppressed > 0 {
			return LabelStyle.Render(fmt.Sprintf("All %d cameras are normal", m.report.Suppressed))
		}
		return LabelStyle.Render("No cameras configured")
	}

	titles := make([]string, len(m.columns))
	for i, c := range m.columns {
		titles[i] = c.Title()
	}

	rows := make([][]string, len(m.report.Rows))
	for i, r := range m.report.Rows {
		rows[i] = ui.Cells(r, m.columns)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(titles...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row < 0 || row >= len(m.report.Rows) {
				return CellStyle
			}
			return RowStyle(m.palette, m.report.Rows[row].Severity, row == m.selected)
		})

	return t.Render()
}

// renderFooter renders severity counts and key hints, or the last refresh
// error.
func (m Model) renderFooter() string {
	if m.lastErr != nil {
		return FooterStyle.Render(ErrorTextStyle.Render("refresh failed: "+m.lastErr.Error()) +
			" | r retry | q quit")
	}

	parts := countSummary(m.report)
	parts = append(parts, "q quit", "r refresh", "↑↓ select", "? help")

	return FooterStyle.Render(strings.Join(parts, " | "))
}

// countSummary lists the non-zero severity counts in rank order.
func countSummary(report status.Report) []string {
	counts := report.Counts()

	var parts []string
	for _, sev := range status.Severities {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev.Label()))
		}
	}
	if report.Suppressed > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", report.Suppressed))
	}
	return parts
}
