// Package observe carries the ambient structured-logging concern for
// crawlkit: fetch and error events recorded as facts, never as
// control flow. A Site reports to whatever Recorder it was built
// with; the default Recorder is a no-op so logging stays opt-in.
package observe

import (
	"context"
	"log/slog"
)

// Recorder is the sink every Site reports fetch and error events to.
type Recorder interface {
	RecordFetch(FetchEvent)
	RecordError(ErrorRecord)
}

// NoopRecorder discards everything. It is the default Recorder for a
// Site that was not given one explicitly.
type NoopRecorder struct{}

func (NoopRecorder) RecordFetch(FetchEvent)  {}
func (NoopRecorder) RecordError(ErrorRecord) {}

// SlogRecorder backs Recorder with a *slog.Logger. Fetch events log at
// Info for a 2xx status and at Warn otherwise; errors always log at
// Warn.
type SlogRecorder struct {
	Logger *slog.Logger
}

func NewSlogRecorder(logger *slog.Logger) SlogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogRecorder{Logger: logger}
}

func (r SlogRecorder) RecordFetch(e FetchEvent) {
	level := slog.LevelInfo
	if e.StatusCode < 200 || e.StatusCode >= 300 {
		level = slog.LevelWarn
	}
	r.Logger.Log(context.Background(), level, "fetch",
		slog.String("url", e.URL),
		slog.Int("status", e.StatusCode),
		slog.Duration("duration", e.Duration),
		slog.String("content_type", e.ContentType),
		slog.Int("depth", e.CrawlDepth),
	)
}

func (r SlogRecorder) RecordError(e ErrorRecord) {
	attrs := make([]any, 0, 4+2*len(e.Attrs))
	attrs = append(attrs,
		slog.String("package", e.Package),
		slog.String("action", e.Action),
		slog.String("cause", e.Cause.String()),
		slog.Time("observed_at", e.ObservedAt),
	)
	for _, a := range e.Attrs {
		attrs = append(attrs, slog.String(string(a.Key), a.Value))
	}
	r.Logger.Log(context.Background(), slog.LevelWarn, e.Err, attrs...)
}
