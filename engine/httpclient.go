package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/crawlkit/crawlkit/failure"
	"github.com/crawlkit/crawlkit/internal/core"
	"github.com/crawlkit/crawlkit/observe"
)

// httpGetter performs the one GET-per-URL wire behaviour the engine
// needs: no custom headers beyond the client's own defaults, no
// retries or backoff (politeness policy is explicitly out of scope),
// redirects follow whatever policy the *http.Client carries.
type httpGetter struct {
	client *http.Client
}

func newHTTPGetter(client *http.Client) *httpGetter {
	return &httpGetter{client: client}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func (g *httpGetter) Get(ctx context.Context, u *url.URL) (*core.Response, time.Duration, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, &fetchError{message: err.Error(), cause: observe.CauseInvariantViolation}
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, time.Since(start), &fetchError{message: err.Error(), cause: observe.CauseNetworkFailure}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return nil, duration, &fetchError{message: err.Error(), cause: observe.CauseContentInvalid}
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return core.NewResponse(finalURL, body, resp.StatusCode, resp.Header, time.Now()), duration, nil
}
