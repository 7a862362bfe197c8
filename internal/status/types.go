// Package status holds the per-camera row model and the age classifier that
// maps upload and calibration ages onto severity tags.
package status

import (
	"strings"
	"time"
)

// Severity tags a row for coloring and filtering.
type Severity string

const (
	SeverityNormal             Severity = "normal"
	SeverityUploadWarning      Severity = "upload_warning"
	SeverityUploadAlert        Severity = "upload_alert"
	SeverityCalibrationWarning Severity = "calibration_warning"
	SeverityCalibrationAlert   Severity = "calibration_alert"
	SeverityError              Severity = "error"
)

// Severities lists every tag, in rank order from least to most severe.
var Severities = []Severity{
	SeverityNormal,
	SeverityCalibrationWarning,
	SeverityCalibrationAlert,
	SeverityUploadWarning,
	SeverityUploadAlert,
	SeverityError,
}

// Label returns a short human-readable label for the tag.
func (s Severity) Label() string {
	switch s {
	case SeverityNormal:
		return "ok"
	case SeverityUploadWarning:
		return "upload late"
	case SeverityUploadAlert:
		return "upload stale"
	case SeverityCalibrationWarning:
		return "calibration late"
	case SeverityCalibrationAlert:
		return "calibration stale"
	case SeverityError:
		return "no data"
	default:
		return string(s)
	}
}

// Thresholds are the warning and alert cutoffs in whole days.
type Thresholds struct {
	Warning int `json:"warning_days" yaml:"warning_days"`
	Alert   int `json:"alert_days" yaml:"alert_days"`
}

// WarningAge returns the warning cutoff as a duration.
func (t Thresholds) WarningAge() time.Duration {
	return days(t.Warning)
}

// AlertAge returns the alert cutoff as a duration.
func (t Thresholds) AlertAge() time.Duration {
	return days(t.Alert)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// Row is the status of one camera for a single run. Absent values are nil.
type Row struct {
	CameraID        string     `json:"camera" yaml:"camera"`
	LastUpload      *time.Time `json:"last_upload" yaml:"last_upload"`
	LastCalibration *time.Time `json:"last_calibration" yaml:"last_calibration"`
	Detections      *int       `json:"detections" yaml:"detections"`
	Status          *string    `json:"status" yaml:"status"`
	Severity        Severity   `json:"severity" yaml:"severity"`
	Notes           []string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Segment returns the network segment prefix of a camera id.
func Segment(cameraID string) string {
	if len(cameraID) < 2 {
		return cameraID
	}
	return cameraID[:2]
}

// NormalizeID trims and upper-cases a configured camera id.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// UploadAge returns the time since the last upload, or false when absent.
func (r Row) UploadAge(now time.Time) (time.Duration, bool) {
	if r.LastUpload == nil {
		return 0, false
	}
	return now.Sub(*r.LastUpload), true
}

// CalibrationAge returns the time since the last calibration, or false when absent.
func (r Row) CalibrationAge(now time.Time) (time.Duration, bool) {
	if r.LastCalibration == nil {
		return 0, false
	}
	return now.Sub(*r.LastCalibration), true
}

// Report is the classified output of one run.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Thresholds  Thresholds `json:"thresholds" yaml:"thresholds"`
	Rows        []Row      `json:"rows" yaml:"rows"`
	Suppressed  int        `json:"suppressed" yaml:"suppressed"`
}

// Counts tallies emitted rows per severity.
func (r Report) Counts() map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, row := range r.Rows {
		counts[row.Severity]++
	}
	return counts
}
