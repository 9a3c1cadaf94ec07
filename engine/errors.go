package engine

import (
	"github.com/crawlkit/crawlkit/failure"
	"github.com/crawlkit/crawlkit/observe"
)

// fetchError classifies a failed GET. It never escapes the site
// boundary — the scheduler logs it via observe.Recorder and moves on,
// per the framework's error-handling policy that a single bad page
// must never poison the crawl.
type fetchError struct {
	message string
	cause   observe.ErrorCause
}

func (e *fetchError) Error() string { return e.message }

// Transport and body-read failures are recoverable: the scheduler
// continues to the next frontier item regardless. Severity shapes
// neither the log level nor control flow.
func (e *fetchError) Severity() failure.Severity { return failure.SeverityRecoverable }

func causeFor(err failure.ClassifiedError) observe.ErrorCause {
	if fe, ok := err.(*fetchError); ok {
		return fe.cause
	}
	return observe.CauseUnknown
}
