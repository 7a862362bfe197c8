package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
)

// colorNames maps termcolor/Tk style names to ANSI indexes or hex values.
var colorNames = map[string]string{
	"black":         "0",
	"red":           "1",
	"green":         "2",
	"yellow":        "3",
	"blue":          "4",
	"magenta":       "5",
	"cyan":          "6",
	"white":         "7",
	"light_grey":    "7",
	"light_gray":    "7",
	"grey":          "8",
	"gray":          "8",
	"dark_grey":     "8",
	"dark_gray":     "8",
	"light_red":     "9",
	"light_green":   "10",
	"light_yellow":  "11",
	"light_blue":    "12",
	"light_magenta": "13",
	"light_cyan":    "14",
	"bright_white":  "15",
	"orange":        "#FFA500",
	"purple":        "#800080",
	"pink":          "#FFC0CB",
	"brown":         "#A52A2A",
}

// DefaultColors are written by 'rmsmonitor init' and used for the optional
// error pair.
var DefaultColors = map[string]string{
	"upload_warning":      "black,yellow",
	"upload_alert":        "white,red",
	"calibration_warning": "black,cyan",
	"calibration_alert":   "white,magenta",
	"normal":              "black,green",
	"error":               "white,red",
}

// ParseColor converts a color name, ANSI index, or hex value into a lipgloss
// color string.
func ParseColor(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "on_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")

	if name == "" {
		return "", fmt.Errorf("empty color")
	}
	if c, ok := colorNames[name]; ok {
		return c, nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n > 255 {
			return "", fmt.Errorf("ANSI color %d out of range 0-255", n)
		}
		return strconv.Itoa(n), nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		if _, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return strings.ToUpper(name), nil
		}
	}
	return "", fmt.Errorf("unknown color %q", raw)
}

// ParseColorPair parses "foreground,background".
func ParseColorPair(key string, parts []string) (ColorPair, error) {
	if len(parts) != 2 {
		return ColorPair{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' needs a foreground and a background color", key),
			fmt.Sprintf("Use something like '%s = black,yellow'.", key))
	}

	fg, err := ParseColor(parts[0])
	if err != nil {
		return ColorPair{}, colorError(key, err)
	}
	bg, err := ParseColor(parts[1])
	if err != nil {
		return ColorPair{}, colorError(key, err)
	}
	return ColorPair{Foreground: fg, Background: bg}, nil
}

func colorError(key string, err error) *errors.Error {
	return errors.WrapWithCode(err, errors.ErrConfig,
		fmt.Sprintf("Invalid color in '%s'", key),
		"Use a name like red or light_blue, an ANSI number 0-255, or a hex value like #ff8800.")
}
