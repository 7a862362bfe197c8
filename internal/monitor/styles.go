package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/status"
)

// Widget chrome colors. Row colors come from the configured palette.
const (
	ColorAccent        = lipgloss.Color("6")
	ColorBorder        = lipgloss.Color("8")
	ColorTextSecondary = lipgloss.Color("7")
	ColorTextMuted     = lipgloss.Color("8")
	ColorCritical      = lipgloss.Color("1")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// RowStyle returns the cell style for a row with the given severity.
// The selected row is drawn reversed.
func RowStyle(p config.Palette, sev status.Severity, selected bool) lipgloss.Style {
	pair := p.For(sev)
	style := CellStyle.
		Foreground(lipgloss.Color(pair.Foreground)).
		Background(lipgloss.Color(pair.Background))
	if selected {
		style = style.Reverse(true).Bold(true)
	}
	return style
}
