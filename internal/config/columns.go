package config

import (
	"fmt"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/errors"
)

// Column names a field shown by the presenters.
type Column string

const (
	ColumnID          Column = "id"
	ColumnUpload      Column = "upload"
	ColumnCalibration Column = "calibration"
	ColumnDetections  Column = "detections"
	ColumnStatus      Column = "status"
)

// AllColumns is the full column set in display order.
var AllColumns = []Column{ColumnID, ColumnUpload, ColumnCalibration, ColumnDetections, ColumnStatus}

// Title returns the column heading.
func (c Column) Title() string {
	switch c {
	case ColumnID:
		return "Station"
	case ColumnUpload:
		return "Last Upload"
	case ColumnCalibration:
		return "Last Calibration"
	case ColumnDetections:
		return "Detections"
	case ColumnStatus:
		return "Status"
	default:
		return string(c)
	}
}

// ParseColumns parses a comma-separated column list. The id column is always
// present and always first.
func ParseColumns(items []string) ([]Column, error) {
	if len(items) == 0 {
		return append([]Column(nil), AllColumns...), nil
	}

	known := make(map[Column]bool, len(AllColumns))
	for _, c := range AllColumns {
		known[c] = true
	}

	cols := []Column{ColumnID}
	seen := map[Column]bool{ColumnID: true}
	for _, item := range items {
		c := Column(strings.ToLower(strings.TrimSpace(item)))
		if c == "" {
			continue
		}
		if !known[c] {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown column '%s'", item),
				"Pick from: id, upload, calibration, detections, status.")
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	return cols, nil
}

// HasColumn reports whether c is part of cols.
func HasColumn(cols []Column, c Column) bool {
	for _, col := range cols {
		if col == c {
			return true
		}
	}
	return false
}
