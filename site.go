package crawlkit

import (
	"context"

	"github.com/crawlkit/crawlkit/engine"
)

// Site is a single logical crawl configuration built by Builder. It
// implements Launchable so a Runner can hold many Sites of differing
// Ctx/Out type behind one narrow capability.
type Site[Ctx any, Out WebsiteOutput] struct {
	sched *engine.Scheduler[Ctx, Out]
}

func (s *Site[Ctx, Out]) init(send func(any) bool) {
	s.sched.Init(func(o Out) bool { return send(o) })
}

func (s *Site[Ctx, Out]) launch(ctx context.Context) {
	s.sched.Launch(ctx)
}
