package fetch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gmn-tools/rmsmonitor/internal/config"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/gmn-tools/rmsmonitor/internal/status"
)

// Fetcher collects raw status rows for a list of cameras.
//
// Cameras are walked in sorted order and a page is only downloaded when the
// segment prefix differs from the previous camera's, so each run of cameras
// sharing a prefix costs one request per page source. Nothing is cached
// across runs.
type Fetcher struct {
	Client    PageGetter
	Extractor Extractor
	Log       logger.Logger

	IndexURL  string
	LatestURL string
	Fields    []Field

	// OnSegment, when set, is called before the pages of a segment are
	// downloaded.
	OnSegment func(segment string)
}

// New creates a Fetcher for cfg using the resty page client.
func New(cfg *config.Config, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Fetcher{
		Client:    NewPageClient(cfg.Sources),
		Extractor: TagExtractor{},
		Log:       log,
		IndexURL:  cfg.Sources.IndexURL,
		LatestURL: cfg.Sources.LatestURL,
		Fields:    Fields(cfg.Markers, cfg.Columns),
	}
}

// PageURL fills the segment placeholder of tmpl.
func PageURL(tmpl, segment string) string {
	return strings.ReplaceAll(tmpl, config.SegmentToken, segment)
}

// pageResult is the outcome of downloading one page for the current segment.
type pageResult struct {
	page *Page
	err  error
}

// Collect fetches and extracts a row per camera id. The returned rows are in
// the order of ids, duplicates included, and are not yet classified.
//
// Page failures are never fatal: affected fields stay nil and a diagnostic is
// logged and attached to the row's notes. Collect only returns an error when
// ctx is cancelled.
func (f *Fetcher) Collect(ctx context.Context, ids []string) ([]status.Row, error) {
	rows := make([]status.Row, len(ids))
	order := make([]int, len(ids))
	for i, id := range ids {
		rows[i].CameraID = status.NormalizeID(id)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].CameraID < rows[order[b]].CameraID
	})

	sources := f.sources()
	pages := make(map[Source]pageResult, len(sources))
	lastSegment := ""

	for n, idx := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := &rows[idx]
		segment := status.Segment(row.CameraID)
		if n == 0 || segment != lastSegment {
			if f.OnSegment != nil {
				f.OnSegment(segment)
			}
			for _, src := range sources {
				pages[src] = f.download(ctx, src, segment)
			}
			lastSegment = segment
		}

		for _, src := range sources {
			res := pages[src]
			if res.err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				f.note(row, pageMessage(row.CameraID, src, res.err))
				continue
			}
			f.extract(row, res.page, src)
		}
	}

	return rows, nil
}

// sources lists the page sources needed by f.Fields, index first.
func (f *Fetcher) sources() []Source {
	var index, latest bool
	for _, field := range f.Fields {
		switch field.Source {
		case SourceIndex:
			index = true
		case SourceLatest:
			latest = f.LatestURL != ""
		}
	}

	var out []Source
	if index {
		out = append(out, SourceIndex)
	}
	if latest {
		out = append(out, SourceLatest)
	}
	return out
}

func (f *Fetcher) download(ctx context.Context, src Source, segment string) pageResult {
	tmpl := f.IndexURL
	if src == SourceLatest {
		tmpl = f.LatestURL
	}
	url := PageURL(tmpl, segment)

	f.Log.Debug("GET %s", url)
	page, err := f.Client.Get(ctx, url)
	if err != nil {
		return pageResult{err: err}
	}
	f.Log.Debug("GET %s -> %d (%d bytes)", url, page.StatusCode, len(page.Body))

	if !page.OK() {
		return pageResult{page: page, err: &PageError{URL: url, StatusCode: page.StatusCode}}
	}
	return pageResult{page: page}
}

func (f *Fetcher) extract(row *status.Row, page *Page, src Source) {
	for _, field := range f.Fields {
		if field.Source != src {
			continue
		}

		val, err := f.Extractor.Extract(page, row.CameraID, field)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				f.Log.Debug("%s %s: %v", row.CameraID, field.Name, err)
			}
			f.note(row, fmt.Sprintf("data for %s not available (%s)", row.CameraID, field.Name))
			continue
		}

		switch field.Name {
		case config.ColumnUpload:
			t := val.Time
			row.LastUpload = &t
		case config.ColumnCalibration:
			t := val.Time
			row.LastCalibration = &t
		case config.ColumnDetections:
			n := val.Count
			row.Detections = &n
		case config.ColumnStatus:
			s := val.Text
			row.Status = &s
		}
	}
}

func (f *Fetcher) note(row *status.Row, msg string) {
	f.Log.Info("%s", msg)
	row.Notes = append(row.Notes, msg)
}

// pageMessage describes a failed page download. Failures of the latest page
// name it, since the index page may still have supplied most fields.
func pageMessage(cameraID string, src Source, err error) string {
	suffix := ""
	if src == SourceLatest {
		suffix = " (latest page)"
	}

	var pe *PageError
	if errors.As(err, &pe) {
		if pe.NotFound() {
			return fmt.Sprintf("data for %s not available%s", cameraID, suffix)
		}
		if pe.Cause == nil {
			return fmt.Sprintf("error: HTTP %d for %s%s", pe.StatusCode, cameraID, suffix)
		}
	}
	return fmt.Sprintf("error: %v for %s%s", err, cameraID, suffix)
}
