package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	rmerrors "github.com/gmn-tools/rmsmonitor/internal/errors"
	"github.com/gmn-tools/rmsmonitor/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WriteTextfile writes snap to path in the text exposition format read by
// node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string, snap Snapshot) error {
	source := func(context.Context) (Snapshot, error) { return snap, nil }

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(source, nil))

	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return rmerrors.WrapWithCode(err, rmerrors.ErrRender,
			"Failed to write metrics textfile "+path,
			"Check that the directory exists and is writable.")
	}
	return nil
}

// Handler returns an http.Handler serving /metrics for collector.
func Handler(collector prometheus.Collector, log logger.Logger) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: promLogger{log},
	}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("rmsmonitor exporter: metrics at /metrics\n"))
	})
	return mux
}

// Serve runs the exporter on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, collector prometheus.Collector, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(collector, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("exporter listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return rmerrors.WrapWithCode(err, rmerrors.ErrExec,
				"Exporter failed to listen on "+addr,
				"Pick a free port with --listen.")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("stopping exporter")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return rmerrors.Wrap(err, "Exporter did not shut down cleanly")
	}
	return nil
}

// promLogger adapts logger.Logger to promhttp's Println interface.
type promLogger struct {
	log logger.Logger
}

func (l promLogger) Println(v ...interface{}) {
	if l.log == nil {
		return
	}
	l.log.Error("%s", fmt.Sprint(v...))
}
