package crawlkit

import (
	"context"
	"sync"
)

const defaultOutputCapacity = 64

// Launchable is the narrow capability a Runner holds sites behind:
// bind the shared output sender, then run to completion. Exact site
// types may differ per Ctx/Out; Runner never needs to know either.
type Launchable interface {
	init(send func(any) bool)
	launch(ctx context.Context)
}

// Runner fans in one or more independent Sites into a single output
// stream. Sites do not share frontiers, dedup sets, or permit pools;
// only the output channel is shared.
type Runner struct {
	sites []Launchable
}

func NewRunner() *Runner {
	return &Runner{}
}

// Add registers a site with the runner. Must be called before Run.
func (r *Runner) Add(s Launchable) {
	r.sites = append(r.sites, s)
}

// Run binds the shared output sender to every site, launches them
// concurrently, and returns the receive side as a lazy sequence of
// outputs. The channel closes once every site has drained. Cancelling
// ctx unwinds in-flight fetches promptly across every site.
func (r *Runner) Run(ctx context.Context) <-chan any {
	out := make(chan any, defaultOutputCapacity)

	send := func(v any) bool {
		select {
		case out <- v:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for _, s := range r.sites {
		s.init(send)
	}

	var wg sync.WaitGroup
	for _, s := range r.sites {
		wg.Add(1)
		go func(s Launchable) {
			defer wg.Done()
			s.launch(ctx)
		}(s)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// RunTyped is a convenience wrapper for a Runner holding only sites of
// a single output type: it runs the fan-in and type-asserts each
// delivered value back to Out, discarding any that don't match (which
// cannot happen for a single-Out-type Runner).
func RunTyped[Out WebsiteOutput](r *Runner, ctx context.Context) <-chan Out {
	raw := r.Run(ctx)
	out := make(chan Out)
	go func() {
		defer close(out)
		for v := range raw {
			if o, ok := v.(Out); ok {
				out <- o
			}
		}
	}()
	return out
}
