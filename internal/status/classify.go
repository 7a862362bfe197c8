package status

import "time"

// Classify returns the severity tag of a row at time now.
//
// Calibration checks run first and upload checks second, each alert check
// after its warning check, so the last matching check wins:
// upload_alert > upload_warning > calibration_alert > calibration_warning > normal.
// A row without an upload timestamp is always an error. A missing calibration
// timestamp counts as older than any threshold.
func Classify(now time.Time, row Row, th Thresholds) Severity {
	uploadAge, ok := row.UploadAge(now)
	if !ok {
		return SeverityError
	}

	tag := SeverityNormal

	calibrationAge, calibrated := row.CalibrationAge(now)
	if !calibrated || calibrationAge > th.WarningAge() {
		tag = SeverityCalibrationWarning
	}
	if !calibrated || calibrationAge > th.AlertAge() {
		tag = SeverityCalibrationAlert
	}

	if uploadAge > th.WarningAge() {
		tag = SeverityUploadWarning
	}
	if uploadAge > th.AlertAge() {
		tag = SeverityUploadAlert
	}

	return tag
}

// Evaluate classifies every row and builds a report. Input order is kept.
// When onlyExceptions is set, rows tagged normal are left out and counted
// in Report.Suppressed.
func Evaluate(now time.Time, rows []Row, th Thresholds, onlyExceptions bool) Report {
	report := Report{
		GeneratedAt: now,
		Thresholds:  th,
		Rows:        make([]Row, 0, len(rows)),
	}

	for _, row := range rows {
		row.Severity = Classify(now, row, th)
		if onlyExceptions && row.Severity == SeverityNormal {
			report.Suppressed++
			continue
		}
		report.Rows = append(report.Rows, row)
	}

	return report
}

// ClassifyAll tags every row without filtering. Used by exporters that need
// the full set regardless of the exception filter.
func ClassifyAll(now time.Time, rows []Row, th Thresholds) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		row.Severity = Classify(now, row, th)
		out[i] = row
	}
	return out
}
