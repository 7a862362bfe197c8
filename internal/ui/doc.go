// Package ui provides the plain terminal output of rmsmonitor: the fixed-width
// status table printed when no interactive widget is used, the fetch spinner,
// and the shared color and symbol constants.
//
// # Status Table
//
// TablePresenter prints one line per camera between '=' borders:
//
//	|=================================================|
//	|Station  Last Upload          Last Calibration   |
//	|-------------------------------------------------|
//	|UK0006   2024-01-10 03:00:00  2024-01-01 00:00:00|
//	|=================================================|
//
// Each row is colored with the palette pair of its severity. Absent values
// print as n/a. Column widths are computed per run from the titles and cells,
// so every line of one table has the same width.
//
// # Colors
//
// Semantic colors are ANSI indexes so they follow the terminal theme. Use
// DisableColors() to switch the default renderer to monochrome (for
// --no-color); TablePresenter also honors its own NoColor flag.
package ui
