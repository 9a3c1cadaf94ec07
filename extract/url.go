// Package extract provides the mandatory built-in extractors along
// with the Selector[T] runtime selector-derivation extractor. Every
// extractor here always satisfies core.Extractor's shape; handler
// dispatch resolves them by reflecting over a handler function's
// declared parameter types.
package extract

import (
	"context"
	"net/url"

	"github.com/crawlkit/crawlkit/internal/core"
)

// URL always succeeds, yielding the response's final URL.
type URL struct {
	url *url.URL
}

func (URL) TryBuild(_ context.Context, resp *core.Response, _ any) (URL, bool) {
	return URL{url: resp.FinalURL()}, true
}

func (u URL) Value() *url.URL { return u.url }
