package core

import "context"

// Handler is the capability a Site holds an ordered list of: invoke
// it with a shared Response and the cloned per-fetch Ctx, get back
// the actions it produced (possibly none, if any declared extractor
// was absent).
type Handler[Ctx any, Out WebsiteOutput] interface {
	Invoke(ctx context.Context, resp *Response, siteCtx Ctx) []Action[Ctx, Out]
}
