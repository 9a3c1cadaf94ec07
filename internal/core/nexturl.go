package core

import "net/url"

// NextURL is one unit of a site's frontier: a URL paired with the
// context value that should be threaded to the fetch it produces.
type NextURL[Ctx any] struct {
	url *url.URL
	ctx Ctx
}

func NewNextURL[Ctx any](u *url.URL, ctx Ctx) NextURL[Ctx] {
	return NextURL[Ctx]{url: u, ctx: ctx}
}

func (n NextURL[Ctx]) URL() *url.URL { return n.url }
func (n NextURL[Ctx]) Ctx() Ctx      { return n.ctx }
