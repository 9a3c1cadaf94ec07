// Package crawlkit is a generic, embeddable web-crawling framework.
// A user declares one or more sites, each described by a starting
// URL, a bounded parallelism budget, a per-request context type, a
// per-site output type, and an ordered set of handlers. The framework
// fetches pages concurrently, invokes the handlers on each response,
// and emits two kinds of effects: new URLs to visit and output
// records to stream to the consumer.
//
// Visited URLs are deduplicated within a site, crawling stays on the
// starting host, and per-site parallelism is strictly bounded. See
// package extract for the built-in extractors handler parameters can
// declare, and package handler for how an arbitrary function becomes
// a Handler.
package crawlkit

import (
	"net/url"

	"github.com/crawlkit/crawlkit/internal/core"
)

// Response carries the result of one fetch: the final URL (after any
// redirects) and the body bytes, shared read-only by every handler
// and extractor invoked on that fetch.
type Response = core.Response

// NextURL is one unit of a site's frontier.
type NextURL[Ctx any] = core.NextURL[Ctx]

// WebsiteOutput is the capability a site's output record must
// implement.
type WebsiteOutput = core.WebsiteOutput

// ActionKind tags which arm of the Action sum type a value holds.
type ActionKind = core.ActionKind

const (
	KindVisit = core.KindVisit
	KindEmit  = core.KindEmit
)

// Action is the {Visit, Emit} sum type a handler produces.
type Action[Ctx any, Out WebsiteOutput] = core.Action[Ctx, Out]

// Visit proposes a URL to the scheduler, carrying the context value
// that will be threaded to its eventual fetch.
func Visit[Ctx any, Out WebsiteOutput](u *url.URL, ctx Ctx) Action[Ctx, Out] {
	return core.Visit[Ctx, Out](u, ctx)
}

// Emit produces an output record, subject to ShouldProcess filtering
// by the scheduler before it reaches the consumer.
func Emit[Ctx any, Out WebsiteOutput](o Out) Action[Ctx, Out] {
	return core.Emit[Ctx, Out](o)
}
