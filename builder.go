package crawlkit

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/crawlkit/crawlkit/engine"
	"github.com/crawlkit/crawlkit/handler"
	"github.com/crawlkit/crawlkit/internal/core"
	"github.com/crawlkit/crawlkit/observe"
)

const defaultParallelLimit = 16

// Builder composes a Site from starting URLs, a parallelism budget,
// and handlers, chained in any order and any number. Build() freezes
// the configuration and returns a runnable Site.
type Builder[Ctx any, Out WebsiteOutput] struct {
	seeds         []*url.URL
	parallelLimit int
	handlers      []core.Handler[Ctx, Out]
	ctxDefault    Ctx
	httpClient    *http.Client
	recorder      observe.Recorder
}

// NewSite starts a Builder with the default parallelism budget of 16.
func NewSite[Ctx any, Out WebsiteOutput]() *Builder[Ctx, Out] {
	return &Builder[Ctx, Out]{parallelLimit: defaultParallelLimit}
}

// Seed appends a starting URL. At least one is required by Build.
func (b *Builder[Ctx, Out]) Seed(u *url.URL) *Builder[Ctx, Out] {
	b.seeds = append(b.seeds, u)
	return b
}

// ParallelLimit sets the per-site concurrent-fetch budget.
func (b *Builder[Ctx, Out]) ParallelLimit(n int) *Builder[Ctx, Out] {
	b.parallelLimit = n
	return b
}

// Handle appends a handler function. fn's parameters must each be an
// extractor (see package extract); its return value(s) are converted
// to actions per the handler package's conversion rules.
func (b *Builder[Ctx, Out]) Handle(fn any) *Builder[Ctx, Out] {
	b.handlers = append(b.handlers, handler.Register[Ctx, Out](fn))
	return b
}

// CtxDefault sets the context value seeded onto the starting URLs.
func (b *Builder[Ctx, Out]) CtxDefault(ctx Ctx) *Builder[Ctx, Out] {
	b.ctxDefault = ctx
	return b
}

// HTTPClient overrides the shared *http.Client the site's fetches use.
// The client must be safe for concurrent use; *http.Client already is.
func (b *Builder[Ctx, Out]) HTTPClient(c *http.Client) *Builder[Ctx, Out] {
	b.httpClient = c
	return b
}

// Observe sets the structured-event sink the site reports fetch and
// error events to. Defaults to a no-op recorder.
func (b *Builder[Ctx, Out]) Observe(r observe.Recorder) *Builder[Ctx, Out] {
	b.recorder = r
	return b
}

// Build validates the configuration and returns a runnable Site.
func (b *Builder[Ctx, Out]) Build() (*Site[Ctx, Out], error) {
	if len(b.seeds) == 0 {
		return nil, errors.New("crawlkit: at least one seed URL is required")
	}
	if b.parallelLimit < 1 {
		return nil, errors.New("crawlkit: parallel limit must be >= 1")
	}
	for _, s := range b.seeds {
		if s == nil || s.Host == "" {
			return nil, errors.New("crawlkit: seed URLs must be absolute")
		}
	}

	sched := engine.NewScheduler(engine.Config[Ctx, Out]{
		Seeds:         b.seeds,
		ParallelLimit: b.parallelLimit,
		Handlers:      b.handlers,
		CtxDefault:    b.ctxDefault,
		HTTPClient:    b.httpClient,
		Recorder:      b.recorder,
	})
	return &Site[Ctx, Out]{sched: sched}, nil
}
