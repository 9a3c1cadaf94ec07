package observe

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(buf *bytes.Buffer) SlogRecorder {
	return NewSlogRecorder(slog.New(slog.NewJSONHandler(buf, nil)))
}

func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestRecordFetchLogsInfoOn2xx(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRecorder(&buf)
	r.RecordFetch(FetchEvent{URL: "https://example.com/", StatusCode: 200, Duration: time.Millisecond})
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
}

func TestRecordFetchLogsWarnOnNon2xx(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRecorder(&buf)
	r.RecordFetch(FetchEvent{URL: "https://example.com/missing", StatusCode: 404, Duration: time.Millisecond})
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])

	buf.Reset()
	r.RecordFetch(FetchEvent{URL: "https://example.com/redirect", StatusCode: 301, Duration: time.Millisecond})
	entry = decodeLastLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
}

func TestRecordErrorLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRecorder(&buf)
	r.RecordError(ErrorRecord{
		Package:    "engine",
		Action:     "fetch",
		Cause:      CauseNetworkFailure,
		Err:        "connection refused",
		ObservedAt: time.Now(),
		Attrs:      []Attribute{NewAttr(AttrURL, "https://example.com/")},
	})
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "network_failure", entry["cause"])
}
