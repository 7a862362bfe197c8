package config

import (
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/status"
)

// DefaultConfigFile is used when no config path is given on the command line.
const DefaultConfigFile = "rmsmonitor.ini"

// Default status page locations. {segment} is replaced by the first two
// characters of a camera id.
const (
	DefaultIndexURL  = "https://globalmeteornetwork.org/weblog/{segment}/index.html"
	DefaultLatestURL = "https://globalmeteornetwork.org/weblog/{segment}/latest.html"
	SegmentToken     = "{segment}"
)

// Default markers searched for on the status pages.
const (
	DefaultUploadMarker      = "Latest night"
	DefaultCalibrationMarker = "Latest successful recalibration"
	DefaultDetectionsMarker  = "Detected meteors"
	DefaultStatusMarker      = "Status:"
	DefaultStatusLookahead   = 10
)

// Config is the fully parsed and validated configuration for one run.
type Config struct {
	// Path the config was read from.
	Path string

	// Cameras in declaration order, normalized (trimmed, upper-case).
	Cameras []string

	Thresholds status.Thresholds

	// ReportOnlyExceptions hides rows tagged normal.
	ReportOnlyExceptions bool

	// ForceTerminal selects the plain table even on an interactive terminal.
	ForceTerminal bool

	Columns []Column
	Palette Palette
	Sources Sources
	Markers Markers
}

// ColorPair is a foreground/background pair. Values are lipgloss color
// strings: an ANSI index ("1") or a hex color ("#ff8800").
type ColorPair struct {
	Foreground string
	Background string
}

// Palette maps every severity tag to its colors.
type Palette struct {
	Normal             ColorPair
	UploadWarning      ColorPair
	UploadAlert        ColorPair
	CalibrationWarning ColorPair
	CalibrationAlert   ColorPair
	Error              ColorPair
}

// For returns the color pair for a severity tag.
func (p Palette) For(s status.Severity) ColorPair {
	switch s {
	case status.SeverityUploadWarning:
		return p.UploadWarning
	case status.SeverityUploadAlert:
		return p.UploadAlert
	case status.SeverityCalibrationWarning:
		return p.CalibrationWarning
	case status.SeverityCalibrationAlert:
		return p.CalibrationAlert
	case status.SeverityError:
		return p.Error
	default:
		return p.Normal
	}
}

// Sources describes where status pages are fetched from.
type Sources struct {
	IndexURL  string
	LatestURL string
	// Timeout is zero for no client-side timeout.
	Timeout   time.Duration
	UserAgent string
}

// Markers are the phrases that identify each field on a status page.
type Markers struct {
	Upload          string
	Calibration     string
	Detections      string
	Status          string
	StatusLookahead int
}

// DefaultSources returns the public network page locations.
func DefaultSources() Sources {
	return Sources{
		IndexURL:  DefaultIndexURL,
		LatestURL: DefaultLatestURL,
		UserAgent: "rmsmonitor",
	}
}

// DefaultMarkers returns the markers used by the public status pages.
func DefaultMarkers() Markers {
	return Markers{
		Upload:          DefaultUploadMarker,
		Calibration:     DefaultCalibrationMarker,
		Detections:      DefaultDetectionsMarker,
		Status:          DefaultStatusMarker,
		StatusLookahead: DefaultStatusLookahead,
	}
}
