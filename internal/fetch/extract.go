package fetch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/config"
)

// TimestampLayout is the layout of upload and calibration times on the
// status pages. Times are UTC.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// ErrNotFound means the marker (or the camera) isn't on the page.
	ErrNotFound = errors.New("marker not found")
	// ErrUnparsable means the marker was found but the value couldn't be read.
	ErrUnparsable = errors.New("value not parsable")
)

// Kind is the type of value a field holds.
type Kind int

const (
	KindTimestamp Kind = iota
	KindCount
	KindText
)

// Source selects which page a field is read from.
type Source int

const (
	SourceIndex Source = iota
	SourceLatest
)

func (s Source) String() string {
	if s == SourceLatest {
		return "latest"
	}
	return "index"
}

// Field describes one value to pull out of a page.
type Field struct {
	Name   config.Column
	Marker string
	Kind   Kind
	Source Source
	// Lookahead is how many lines after the camera's first mention are
	// searched for a text marker.
	Lookahead int
}

// Value is an extracted field. Only the member matching the field's Kind is set.
type Value struct {
	Time  time.Time
	Count int
	Text  string
}

// Fields returns the fields needed for cols. Upload and calibration are
// always included since classification depends on them.
func Fields(m config.Markers, cols []config.Column) []Field {
	fields := []Field{
		{Name: config.ColumnUpload, Marker: m.Upload, Kind: KindTimestamp, Source: SourceIndex},
		{Name: config.ColumnCalibration, Marker: m.Calibration, Kind: KindTimestamp, Source: SourceIndex},
	}
	if config.HasColumn(cols, config.ColumnStatus) && m.Status != "" {
		fields = append(fields, Field{
			Name:      config.ColumnStatus,
			Marker:    m.Status,
			Kind:      KindText,
			Source:    SourceIndex,
			Lookahead: m.StatusLookahead,
		})
	}
	if config.HasColumn(cols, config.ColumnDetections) && m.Detections != "" {
		fields = append(fields, Field{
			Name:   config.ColumnDetections,
			Marker: m.Detections,
			Kind:   KindCount,
			Source: SourceLatest,
		})
	}
	return fields
}

// Extractor reads a single field for a camera from a page.
type Extractor interface {
	Extract(page *Page, cameraID string, f Field) (Value, error)
}

// TagExtractor finds values by plain substring search over the page's lines
// and reads them from between HTML tags. It does not parse HTML.
type TagExtractor struct{}

// Extract implements Extractor.
func (TagExtractor) Extract(page *Page, cameraID string, f Field) (Value, error) {
	lines := splitLines(page.Body)

	if f.Kind == KindText {
		return extractText(lines, cameraID, f)
	}

	line, ok := findLine(lines, cameraID, f.Marker)
	if !ok {
		return Value{}, ErrNotFound
	}

	raw, ok := tagValue(line)
	if !ok {
		return Value{}, fmt.Errorf("%w: no tagged value in %q", ErrUnparsable, line)
	}

	switch f.Kind {
	case KindTimestamp:
		t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(raw), time.UTC)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
		}
		return Value{Time: t}, nil

	case KindCount:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
		}
		return Value{Count: n}, nil
	}

	return Value{}, fmt.Errorf("%w: unknown field kind %d", ErrUnparsable, f.Kind)
}

// extractText scans the camera's first line and up to f.Lookahead lines after
// it for the marker. The value is whatever text follows the marker once tags
// are removed.
func extractText(lines []string, cameraID string, f Field) (Value, error) {
	start := -1
	for i, line := range lines {
		if strings.Contains(line, cameraID) {
			start = i
			break
		}
	}
	if start < 0 {
		return Value{}, ErrNotFound
	}

	end := start + f.Lookahead
	if end >= len(lines) {
		end = len(lines) - 1
	}
	for _, line := range lines[start : end+1] {
		idx := strings.Index(line, f.Marker)
		if idx < 0 {
			continue
		}
		text := strings.TrimSpace(stripTags(line[idx+len(f.Marker):]))
		if text == "" {
			return Value{}, fmt.Errorf("%w: empty text after %q", ErrUnparsable, f.Marker)
		}
		return Value{Text: text}, nil
	}
	return Value{}, ErrNotFound
}

func splitLines(body string) []string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// findLine returns the first line containing both needles.
func findLine(lines []string, a, b string) (string, bool) {
	for _, line := range lines {
		if strings.Contains(line, a) && strings.Contains(line, b) {
			return line, true
		}
	}
	return "", false
}

// tagValue returns the text between the second '>' and the next '<'.
func tagValue(line string) (string, bool) {
	parts := strings.SplitN(line, ">", 4)
	if len(parts) < 3 {
		return "", false
	}
	val, _, _ := strings.Cut(parts[2], "<")
	return val, true
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
