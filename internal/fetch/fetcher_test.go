package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNetwork serves status pages by path and counts requests.
type fakeNetwork struct {
	mu    sync.Mutex
	hits  map[string]int
	pages map[string]string
	codes map[string]int
	agent string
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		hits:  make(map[string]int),
		pages: make(map[string]string),
		codes: make(map[string]int),
	}
}

func (n *fakeNetwork) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.hits[r.URL.Path]++
	n.agent = r.Header.Get("User-Agent")
	if code, ok := n.codes[r.URL.Path]; ok {
		w.WriteHeader(code)
		return
	}
	body, ok := n.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = io.WriteString(w, body)
}

func (n *fakeNetwork) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	sum := 0
	for _, c := range n.hits {
		sum += c
	}
	return sum
}

func (n *fakeNetwork) count(path string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hits[path]
}

// infoLines returns the diagnostics meant for the user, skipping debug output.
func infoLines(log *logger.BufferLogger) []string {
	var out []string
	for _, m := range log.Messages {
		if m.Level == "info" {
			out = append(out, m.Message)
		}
	}
	return out
}

func newTestFetcher(t *testing.T, network *fakeNetwork, cols []config.Column, log logger.Logger) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(network)
	t.Cleanup(srv.Close)

	src := config.Sources{
		IndexURL:  srv.URL + "/{segment}/index.html",
		LatestURL: srv.URL + "/{segment}/latest.html",
		UserAgent: "rmsmonitor-test",
	}
	return &Fetcher{
		Client:    NewPageClient(src),
		Extractor: TagExtractor{},
		Log:       log,
		IndexURL:  src.IndexURL,
		LatestURL: src.LatestURL,
		Fields:    Fields(config.DefaultMarkers(), cols),
	}
}

func abIndex() string {
	return strings.Join([]string{
		"<table>",
		uploadLine("AB0001", "2024-01-10 03:00:00"),
		calibrationLine("AB0001", "2024-01-01 00:00:00"),
		statusLine("capturing"),
		uploadLine("AB0002", "2024-01-09 03:00:00"),
		calibrationLine("AB0002", "2023-11-01 00:00:00"),
		statusLine("idle"),
		"</table>",
	}, "\n")
}

func cdIndex() string {
	return strings.Join([]string{
		uploadLine("CD0001", "2024-01-08 03:00:00"),
		calibrationLine("CD0001", "2024-01-02 00:00:00"),
	}, "\n")
}

func TestCollect_OneRequestPerSegmentRun(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()
	network.pages["/CD/index.html"] = cdIndex()

	f := newTestFetcher(t, network, []config.Column{config.ColumnID, config.ColumnUpload, config.ColumnCalibration}, logger.Noop())

	rows, err := f.Collect(context.Background(), []string{"AB0001", "CD0001", "AB0002"})
	require.NoError(t, err)

	assert.Equal(t, 1, network.count("/AB/index.html"))
	assert.Equal(t, 1, network.count("/CD/index.html"))
	assert.Equal(t, 2, network.total())
	assert.Equal(t, "rmsmonitor-test", network.agent)

	require.Len(t, rows, 3)
	assert.Equal(t, "AB0001", rows[0].CameraID)
	assert.Equal(t, "CD0001", rows[1].CameraID)
	assert.Equal(t, "AB0002", rows[2].CameraID)

	require.NotNil(t, rows[0].LastUpload)
	assert.Equal(t, time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC), *rows[0].LastUpload)
	require.NotNil(t, rows[2].LastCalibration)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), *rows[2].LastCalibration)
	require.NotNil(t, rows[1].LastUpload)
	assert.Equal(t, 8, rows[1].LastUpload.Day())

	for _, row := range rows {
		assert.Nil(t, row.Status, "status column not requested")
		assert.Nil(t, row.Detections, "detections column not requested")
		assert.Empty(t, row.Notes)
	}
}

func TestCollect_OnSegment(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()
	network.pages["/CD/index.html"] = cdIndex()

	f := newTestFetcher(t, network, []config.Column{config.ColumnID}, logger.Noop())
	var segments []string
	f.OnSegment = func(segment string) { segments = append(segments, segment) }

	_, err := f.Collect(context.Background(), []string{"CD0001", "ab0002", "AB0001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AB", "CD"}, segments)
}

func TestCollect_NormalizesAndKeepsDuplicates(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()

	f := newTestFetcher(t, network, []config.Column{config.ColumnID}, logger.Noop())

	rows, err := f.Collect(context.Background(), []string{" ab0002", "AB0001", "ab0002 "})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"AB0002", "AB0001", "AB0002"}, []string{rows[0].CameraID, rows[1].CameraID, rows[2].CameraID})
	assert.Equal(t, rows[0].LastUpload, rows[2].LastUpload)
	assert.Equal(t, 1, network.total())
}

func TestCollect_StatusAndDetections(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()
	network.pages["/AB/latest.html"] = strings.Join([]string{
		detectionsLine("AB0001", 42),
		detectionsLine("AB0002", 0),
	}, "\n")

	f := newTestFetcher(t, network, config.AllColumns, logger.Noop())

	rows, err := f.Collect(context.Background(), []string{"AB0001", "AB0002"})
	require.NoError(t, err)

	assert.Equal(t, 1, network.count("/AB/index.html"))
	assert.Equal(t, 1, network.count("/AB/latest.html"))

	require.NotNil(t, rows[0].Status)
	assert.Equal(t, "capturing", *rows[0].Status)
	require.NotNil(t, rows[0].Detections)
	assert.Equal(t, 42, *rows[0].Detections)

	require.NotNil(t, rows[1].Status)
	assert.Equal(t, "idle", *rows[1].Status)
	require.NotNil(t, rows[1].Detections)
	assert.Equal(t, 0, *rows[1].Detections)
}

func TestCollect_NoLatestURLSkipsDetections(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()

	f := newTestFetcher(t, network, config.AllColumns, logger.Noop())
	f.LatestURL = ""

	rows, err := f.Collect(context.Background(), []string{"AB0001"})
	require.NoError(t, err)

	assert.Equal(t, 1, network.total())
	assert.Nil(t, rows[0].Detections)
	assert.NotNil(t, rows[0].LastUpload)
}

func TestCollect_NotFoundPage(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()

	log := logger.NewBufferLogger()
	f := newTestFetcher(t, network, []config.Column{config.ColumnID}, log)

	rows, err := f.Collect(context.Background(), []string{"AB0001", "ZZ0001", "ZZ0002"})
	require.NoError(t, err)

	assert.NotNil(t, rows[0].LastUpload)
	assert.Nil(t, rows[1].LastUpload)
	assert.Nil(t, rows[1].LastCalibration)
	assert.Nil(t, rows[2].LastUpload)
	assert.Equal(t, 1, network.count("/ZZ/index.html"))

	assert.Equal(t, []string{
		"data for ZZ0001 not available",
		"data for ZZ0002 not available",
	}, infoLines(log))
	assert.Equal(t, []string{"data for ZZ0001 not available"}, rows[1].Notes)
}

func TestCollect_LatestPageMissing(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = abIndex()

	log := logger.NewBufferLogger()
	f := newTestFetcher(t, network, []config.Column{config.ColumnID, config.ColumnDetections}, log)

	rows, err := f.Collect(context.Background(), []string{"AB0001"})
	require.NoError(t, err)

	assert.NotNil(t, rows[0].LastUpload, "index fields survive a missing latest page")
	assert.NotNil(t, rows[0].LastCalibration)
	assert.Nil(t, rows[0].Detections)
	assert.Equal(t, 1, network.count("/AB/latest.html"))
	assert.Equal(t, []string{"data for AB0001 not available (latest page)"}, rows[0].Notes)
	assert.Equal(t, []string{"data for AB0001 not available (latest page)"}, infoLines(log))
}

func TestCollect_ServerError(t *testing.T) {
	network := newFakeNetwork()
	network.codes["/AB/index.html"] = http.StatusServiceUnavailable

	log := logger.NewBufferLogger()
	f := newTestFetcher(t, network, []config.Column{config.ColumnID}, log)

	rows, err := f.Collect(context.Background(), []string{"AB0001"})
	require.NoError(t, err)

	assert.Nil(t, rows[0].LastUpload)
	assert.Equal(t, []string{"error: HTTP 503 for AB0001"}, infoLines(log))
}

func TestCollect_MissingMarker(t *testing.T) {
	network := newFakeNetwork()
	network.pages["/AB/index.html"] = strings.Join([]string{
		uploadLine("AB0001", "2024-01-10 03:00:00"),
		uploadLine("AB0002", "not a time"),
	}, "\n")

	log := logger.NewBufferLogger()
	f := newTestFetcher(t, network, []config.Column{config.ColumnID}, log)

	rows, err := f.Collect(context.Background(), []string{"AB0001", "AB0002"})
	require.NoError(t, err)

	assert.NotNil(t, rows[0].LastUpload)
	assert.Nil(t, rows[0].LastCalibration)
	assert.Equal(t, []string{"data for AB0001 not available (calibration)"}, rows[0].Notes)

	assert.Nil(t, rows[1].LastUpload)
	assert.Equal(t, []string{
		"data for AB0002 not available (upload)",
		"data for AB0002 not available (calibration)",
	}, rows[1].Notes)

	var parseFailure bool
	for _, m := range log.Messages {
		if m.Level == "debug" && strings.HasPrefix(m.Message, "AB0002 upload:") {
			parseFailure = true
		}
	}
	assert.True(t, parseFailure, "parse failures are logged at debug level")
}

type failingGetter struct{ err error }

func (g failingGetter) Get(ctx context.Context, url string) (*Page, error) {
	return nil, &PageError{URL: url, Cause: g.err}
}

func TestCollect_TransportError(t *testing.T) {
	log := logger.NewBufferLogger()
	f := &Fetcher{
		Client:    failingGetter{err: errors.New("connection refused")},
		Extractor: TagExtractor{},
		Log:       log,
		IndexURL:  "http://example.invalid/{segment}/index.html",
		Fields:    Fields(config.DefaultMarkers(), nil),
	}

	rows, err := f.Collect(context.Background(), []string{"AB0001"})
	require.NoError(t, err)
	assert.Nil(t, rows[0].LastUpload)

	lines := infoLines(log)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "error: GET http://example.invalid/AB/index.html failed"))
	assert.Contains(t, lines[0], "connection refused")
	assert.True(t, strings.HasSuffix(lines[0], "for AB0001"))
}

func TestCollect_Cancelled(t *testing.T) {
	network := newFakeNetwork()
	f := newTestFetcher(t, network, nil, logger.Noop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Collect(ctx, []string{"AB0001"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, network.total())
}

func TestCollect_Empty(t *testing.T) {
	network := newFakeNetwork()
	f := newTestFetcher(t, network, nil, logger.Noop())

	rows, err := f.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, network.total())
}

func TestPageURL(t *testing.T) {
	assert.Equal(t,
		"https://globalmeteornetwork.org/weblog/UK/index.html",
		PageURL(config.DefaultIndexURL, "UK"))
	assert.Equal(t, "http://x/no-token", PageURL("http://x/no-token", "UK"))
}

func TestPageError(t *testing.T) {
	notFound := &PageError{URL: "http://x", StatusCode: 404}
	assert.True(t, notFound.NotFound())
	assert.Equal(t, "GET http://x returned HTTP 404", notFound.Error())

	cause := errors.New("boom")
	transport := &PageError{URL: "http://x", Cause: cause}
	assert.False(t, transport.NotFound())
	assert.ErrorIs(t, transport, cause)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Columns: config.AllColumns,
		Sources: config.DefaultSources(),
		Markers: config.DefaultMarkers(),
	}
	cfg.Sources.Timeout = 5 * time.Second

	f := New(cfg, nil)
	require.NotNil(t, f.Log)
	assert.Equal(t, config.DefaultIndexURL, f.IndexURL)
	assert.Equal(t, config.DefaultLatestURL, f.LatestURL)
	assert.Len(t, f.Fields, 4)

	client, ok := f.Client.(*PageClient)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, client.HTTP.GetClient().Timeout)
}
