// Package metrics exposes classified camera rows as Prometheus gauges, either
// as a one-off textfile for node_exporter or from a long-running exporter.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/gmn-tools/rmsmonitor/internal/status"
	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is one classified run. Rows include cameras hidden from display.
type Snapshot struct {
	GeneratedAt time.Time
	Rows        []status.Row
}

// SourceFunc produces a fresh snapshot for each scrape.
type SourceFunc func(ctx context.Context) (Snapshot, error)

var (
	upDesc = prometheus.NewDesc(
		"rmsmonitor_up", "Whether the last status poll succeeded.", nil, nil,
	)
	scrapesDesc = prometheus.NewDesc(
		"rmsmonitor_scrapes_total", "Status polls run by this collector.", nil, nil,
	)
	scrapeDurationDesc = prometheus.NewDesc(
		"rmsmonitor_scrape_duration_seconds", "Time taken to poll the status pages.", nil, nil,
	)
	lastRunDesc = prometheus.NewDesc(
		"rmsmonitor_last_run_timestamp_seconds", "Unix time the rows were classified.", nil, nil,
	)
	uploadAgeDesc = prometheus.NewDesc(
		"rmsmonitor_upload_age_seconds", "Seconds since the camera's last upload.", []string{"camera"}, nil,
	)
	calibrationAgeDesc = prometheus.NewDesc(
		"rmsmonitor_calibration_age_seconds", "Seconds since the camera's last successful calibration.", []string{"camera"}, nil,
	)
	detectionsDesc = prometheus.NewDesc(
		"rmsmonitor_detections", "Detections reported on the latest page.", []string{"camera"}, nil,
	)
	severityDesc = prometheus.NewDesc(
		"rmsmonitor_camera_severity", "1 for the camera's current severity, 0 otherwise.", []string{"camera", "severity"}, nil,
	)
	camerasDesc = prometheus.NewDesc(
		"rmsmonitor_cameras", "Cameras grouped by severity.", []string{"severity"}, nil,
	)
)

// DefaultScrapeTimeout bounds a single poll when the collector has no
// timeout of its own.
const DefaultScrapeTimeout = 2 * time.Minute

// Collector is a prometheus.Collector that polls its source on every
// scrape. Scrapes are serialized.
type Collector struct {
	Source SourceFunc
	Log    logger.Logger
	// Timeout cancels a poll that runs longer. Zero means DefaultScrapeTimeout.
	Timeout time.Duration

	mu      sync.Mutex
	scrapes float64
}

// NewCollector creates a collector for source.
func NewCollector(source SourceFunc, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	return &Collector{Source: source, Log: log}
}

func (c *Collector) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultScrapeTimeout
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- scrapesDesc
	ch <- scrapeDurationDesc
	ch <- lastRunDesc
	ch <- uploadAgeDesc
	ch <- calibrationAgeDesc
	ch <- detectionsDesc
	ch <- severityDesc
	ch <- camerasDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	c.scrapes++

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()

	snap, err := c.Source(ctx)
	up := 1.0
	if err != nil {
		up = 0
		c.Log.Error("status poll failed: %v", err)
	} else {
		emitSnapshot(ch, snap)
	}

	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, up)
	ch <- prometheus.MustNewConstMetric(scrapesDesc, prometheus.CounterValue, c.scrapes)
	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, time.Since(start).Seconds())
}

// emitSnapshot sends the per-camera gauges. A camera listed twice is only
// exported once.
func emitSnapshot(ch chan<- prometheus.Metric, snap Snapshot) {
	ch <- prometheus.MustNewConstMetric(lastRunDesc, prometheus.GaugeValue, float64(snap.GeneratedAt.Unix()))

	seen := make(map[string]bool, len(snap.Rows))
	counts := make(map[status.Severity]float64, len(status.Severities))
	for _, sev := range status.Severities {
		counts[sev] = 0
	}

	for _, row := range snap.Rows {
		if seen[row.CameraID] {
			continue
		}
		seen[row.CameraID] = true
		counts[row.Severity]++

		if age, ok := row.UploadAge(snap.GeneratedAt); ok {
			ch <- prometheus.MustNewConstMetric(uploadAgeDesc, prometheus.GaugeValue, age.Seconds(), row.CameraID)
		}
		if age, ok := row.CalibrationAge(snap.GeneratedAt); ok {
			ch <- prometheus.MustNewConstMetric(calibrationAgeDesc, prometheus.GaugeValue, age.Seconds(), row.CameraID)
		}
		if row.Detections != nil {
			ch <- prometheus.MustNewConstMetric(detectionsDesc, prometheus.GaugeValue, float64(*row.Detections), row.CameraID)
		}
		for _, sev := range status.Severities {
			val := 0.0
			if sev == row.Severity {
				val = 1
			}
			ch <- prometheus.MustNewConstMetric(severityDesc, prometheus.GaugeValue, val, row.CameraID, string(sev))
		}
	}

	for sev, n := range counts {
		ch <- prometheus.MustNewConstMetric(camerasDesc, prometheus.GaugeValue, n, string(sev))
	}
}
