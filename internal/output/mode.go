// Package output picks how a report is shown and holds the machine-readable
// presenters.
package output

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
	"golang.org/x/term"
)

// Mode is a presentation mode.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeTable  Mode = "table"
	ModeWidget Mode = "widget"
	ModeJSON   Mode = "json"
	ModeYAML   Mode = "yaml"
)

// Modes lists every accepted --format value.
var Modes = []Mode{ModeAuto, ModeTable, ModeWidget, ModeJSON, ModeYAML}

// ParseMode validates a --format value. Empty means auto.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}

	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown output format '%s'", s),
		"Use one of: "+strings.Join(names, ", "))
}

// Machine reports whether m produces machine-readable output.
func (m Mode) Machine() bool {
	return m == ModeJSON || m == ModeYAML
}

// Environment is what auto mode looks at.
type Environment struct {
	StdinTTY  bool
	StdoutTTY bool
	Term      string
	GOOS      string
}

// DetectEnvironment inspects the current process.
func DetectEnvironment() Environment {
	return Environment{
		StdinTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		StdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
		Term:      os.Getenv("TERM"),
		GOOS:      runtime.GOOS,
	}
}

// noTerminalOS are platforms where a full-screen widget can't run.
var noTerminalOS = map[string]bool{
	"js":     true,
	"wasip1": true,
	"plan9":  true,
}

// Interactive reports whether a full-screen widget can be shown.
func (e Environment) Interactive() bool {
	return e.StdinTTY && e.StdoutTTY && e.Term != "dumb" && !noTerminalOS[e.GOOS]
}

// SelectMode resolves auto to widget or table. Any explicit mode is returned
// unchanged; forceTerminal only affects auto.
func SelectMode(requested Mode, forceTerminal bool, env Environment) Mode {
	if requested != ModeAuto && requested != "" {
		return requested
	}
	if forceTerminal || !env.Interactive() {
		return ModeTable
	}
	return ModeWidget
}
