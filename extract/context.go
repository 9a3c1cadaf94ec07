package extract

import (
	"context"

	"github.com/crawlkit/crawlkit/internal/core"
)

// Context always succeeds, yielding the per-fetch site Ctx value.
type Context[Ctx any] struct {
	value Ctx
}

func (Context[Ctx]) TryBuild(_ context.Context, _ *core.Response, siteCtx any) (Context[Ctx], bool) {
	v, ok := siteCtx.(Ctx)
	if !ok {
		return Context[Ctx]{}, false
	}
	return Context[Ctx]{value: v}, true
}

func (c Context[Ctx]) Value() Ctx { return c.value }
