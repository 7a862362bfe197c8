package monitor

import tea "github.com/charmbracelet/bubbletea"

// Key bindings as constants for consistency.
const (
	KeyQuit        = "q"
	KeyQuitAlt     = "ctrl+c"
	KeyRefresh     = "r"
	KeySelectPrev  = "up"
	KeySelectPrevK = "k"
	KeySelectNext  = "down"
	KeySelectNextJ = "j"
	KeySelectFirst = "home"
	KeySelectLast  = "end"
	KeyClose       = "esc"
	KeyToggleHelp  = "?"
)

// HandleKeyMsg processes keyboard input and returns whether the key was
// handled along with any command to run.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyClose {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.startRefresh()

	case KeySelectPrev, KeySelectPrevK:
		m.selectRow(m.selected - 1)
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		m.selectRow(m.selected + 1)
		return true, nil

	case KeySelectFirst:
		m.selectRow(0)
		return true, nil

	case KeySelectLast:
		m.selectRow(len(m.report.Rows) - 1)
		return true, nil
	}

	return false, nil
}
