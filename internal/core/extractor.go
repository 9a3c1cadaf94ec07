package core

import "context"

// Extractor is the protocol every handler parameter type implements:
// a typed, possibly-absent projection from a Response and the
// per-fetch site context onto a value. Absence (false) means the
// handler this parameter belongs to cannot run on this response; it
// is a clean no-op, never an error.
//
// siteCtx is passed as any rather than a generic-typed parameter so
// concrete extractor types (JSON[T], Selector[T], ...) need not
// themselves be generic over the site's Ctx type; extractors that do
// care about Ctx (Context[Ctx]) recover it with a type assertion.
type Extractor[T any] interface {
	TryBuild(ctx context.Context, resp *Response, siteCtx any) (T, bool)
}
