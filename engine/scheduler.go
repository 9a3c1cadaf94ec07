// Package engine implements the bounded-concurrency frontier
// scheduler: the per-site fetch loop that owns the URL frontier,
// enforces the parallelism semaphore, performs HTTP requests,
// deduplicates discovered URLs, fans out handler invocations, and
// routes their resulting actions.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/crawlkit/crawlkit/internal/core"
	"github.com/crawlkit/crawlkit/observe"
)

// Config is everything a Scheduler needs to run one site.
type Config[Ctx any, Out core.WebsiteOutput] struct {
	Seeds         []*url.URL
	ParallelLimit int
	Handlers      []core.Handler[Ctx, Out]
	CtxDefault    Ctx
	HTTPClient    *http.Client
	Recorder      observe.Recorder
}

// Scheduler is the per-site frontier scheduler described above. Its
// zero value is not usable; build one with NewScheduler.
type Scheduler[Ctx any, Out core.WebsiteOutput] struct {
	cfg      Config[Ctx, Out]
	frontier chan core.NextURL[Ctx]
	permits  chan struct{}
	seen     *ShardedSet
	host     string
	getter   *httpGetter
	send     func(Out) bool
}

func NewScheduler[Ctx any, Out core.WebsiteOutput](cfg Config[Ctx, Out]) *Scheduler[Ctx, Out] {
	if cfg.ParallelLimit < 1 {
		cfg.ParallelLimit = 16
	}
	if cfg.Recorder == nil {
		cfg.Recorder = observe.NoopRecorder{}
	}
	client := cfg.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	host := ""
	if len(cfg.Seeds) > 0 {
		host = cfg.Seeds[0].Host
	}
	return &Scheduler[Ctx, Out]{
		cfg:      cfg,
		frontier: make(chan core.NextURL[Ctx], 4*cfg.ParallelLimit),
		permits:  make(chan struct{}, cfg.ParallelLimit),
		seen:     NewShardedSet(defaultShardCount),
		host:     host,
		getter:   newHTTPGetter(client),
	}
}

// Init binds the callback the scheduler uses to deliver outputs. It
// must be called before Launch.
func (s *Scheduler[Ctx, Out]) Init(send func(Out) bool) {
	s.send = send
}

// Launch seeds the frontier unconditionally (seeds bypass dedup) and
// runs the fetch loop until the frontier is drained and no in-flight
// fetch can produce more URLs, or ctx is cancelled.
func (s *Scheduler[Ctx, Out]) Launch(ctx context.Context) {
	var pending sync.WaitGroup
	pending.Add(len(s.cfg.Seeds))

	// Seeding runs as its own goroutine, concurrently with the fetch
	// loop below: FRONTIER is bounded, so a seed count beyond its
	// capacity would otherwise block this call forever before the
	// loop ever starts draining it.
	go func() {
		for _, seed := range s.cfg.Seeds {
			select {
			case s.frontier <- core.NewNextURL(seed, s.cfg.CtxDefault):
			case <-ctx.Done():
				pending.Done()
			}
		}
	}()

	drained := make(chan struct{})
	go func() {
		pending.Wait()
		close(drained)
	}()

	var inFlight sync.WaitGroup
loop:
	for {
		select {
		case n := <-s.frontier:
			inFlight.Add(1)
			go func(n core.NextURL[Ctx]) {
				defer inFlight.Done()
				s.runFetch(ctx, n, &pending)
			}(n)
		case <-drained:
			break loop
		case <-ctx.Done():
			break loop
		}
	}
	inFlight.Wait()
}

// runFetch performs one fetch_and_dispatch cycle: acquire a permit,
// GET the URL, build a Response, invoke every handler concurrently,
// and route the concatenated actions. pending is decremented exactly
// once, after any discovered URLs it routes have already been
// pending.Add'ed, so the WaitGroup never transiently reaches zero
// while work remains.
func (s *Scheduler[Ctx, Out]) runFetch(ctx context.Context, n core.NextURL[Ctx], pending *sync.WaitGroup) {
	defer pending.Done()

	select {
	case s.permits <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.permits }()

	resp, duration, cerr := s.getter.Get(ctx, n.URL())
	if cerr != nil {
		s.cfg.Recorder.RecordError(observe.ErrorRecord{
			Package:    "engine",
			Action:     "fetch",
			Cause:      causeFor(cerr),
			Err:        cerr.Error(),
			ObservedAt: time.Now(),
			Attrs:      []observe.Attribute{observe.NewAttr(observe.AttrURL, n.URL().String())},
		})
		return
	}

	s.cfg.Recorder.RecordFetch(observe.FetchEvent{
		URL:         resp.FinalURL().String(),
		StatusCode:  resp.StatusCode(),
		Duration:    duration,
		ContentType: resp.Header().Get("Content-Type"),
	})

	actions := s.dispatch(ctx, resp, n.Ctx())
	for _, a := range actions {
		s.route(ctx, a, pending)
	}
}

// dispatch invokes every handler concurrently on the same Response
// and concatenates their action sequences in handler-registration
// order. A handler that panics is isolated: its own actions are lost,
// every other handler's actions still come through.
func (s *Scheduler[Ctx, Out]) dispatch(ctx context.Context, resp *core.Response, siteCtx Ctx) []core.Action[Ctx, Out] {
	n := len(s.cfg.Handlers)
	results := make([][]core.Action[Ctx, Out], n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i, h := range s.cfg.Handlers {
		go s.invokeHandler(ctx, i, h, resp, siteCtx, results, &wg)
	}
	wg.Wait()

	var all []core.Action[Ctx, Out]
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

func (s *Scheduler[Ctx, Out]) invokeHandler(
	ctx context.Context,
	i int,
	h core.Handler[Ctx, Out],
	resp *core.Response,
	siteCtx Ctx,
	results [][]core.Action[Ctx, Out],
	wg *sync.WaitGroup,
) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Recorder.RecordError(observe.ErrorRecord{
				Package:    "handler",
				Action:     "Invoke",
				Cause:      observe.CauseInvariantViolation,
				Err:        fmt.Sprintf("handler panic: %v", r),
				ObservedAt: time.Now(),
			})
		}
	}()
	results[i] = h.Invoke(ctx, resp, siteCtx)
}

// route applies the scheduler's routing rule to a single action:
// Emit sends to the output callback if ShouldProcess passes; Visit is
// discarded on cross-host or duplicate-path, otherwise admitted to the
// frontier.
func (s *Scheduler[Ctx, Out]) route(ctx context.Context, a core.Action[Ctx, Out], pending *sync.WaitGroup) {
	switch a.Kind() {
	case core.KindEmit:
		out := a.Out()
		if out.ShouldProcess() && s.send != nil {
			s.send(out)
		}
	case core.KindVisit:
		next := a.Next()
		u := next.URL()
		if u.Host != s.host {
			return
		}
		if !s.seen.Insert(u.Path) {
			return
		}
		pending.Add(1)
		select {
		case s.frontier <- next:
		case <-ctx.Done():
			pending.Done()
		}
	default:
		// unknown action kinds are ignored for forward compatibility
	}
}
