// Package monitor implements the interactive widget mode: a full-screen table
// of camera rows that can be refreshed in place.
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the current report, palette, column set, selection and layout
//   - Update: keystrokes, window resizes and finished refreshes
//   - View: header, table (lipgloss/table) and footer rendered to a string
//
// Each row is drawn with the palette pair of its severity tag, so the widget
// and the plain table agree on colors. Rows keep configuration order.
//
// # Refresh
//
// Pressing r runs the RefreshFunc as a Bubble Tea command. Only one refresh
// runs at a time; a failed refresh keeps the previous rows on screen and shows
// the error in the footer.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Refresh
//	j/k, ↑/↓    - Move selection
//	Home/End    - First / last camera
//	?           - Toggle help overlay
package monitor
