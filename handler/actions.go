package handler

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/crawlkit/crawlkit/internal/core"
)

// actionsFromReturn converts one handler invocation's return values
// (plural when fn has multiple return values, i.e. a tuple) into the
// concatenated action sequence, in return-value order. siteCtx is the
// Ctx of the fetch being handled, used as the Ctx of any Visit built
// from a bare *url.URL return (a handler that returns a URL, rather
// than a core.NextURL[Ctx], carries no Ctx of its own). That Ctx is
// the site's ctx_default for seeds and for pages reached only through
// bare-URL returns; below a page queued by a NextURL with a different
// Ctx, bare-URL returns carry that Ctx instead of ctx_default.
func actionsFromReturn[Ctx any, Out core.WebsiteOutput](results []reflect.Value, siteCtx Ctx) []core.Action[Ctx, Out] {
	var actions []core.Action[Ctx, Out]
	for _, rv := range results {
		actions = append(actions, actionsFromValue[Ctx, Out](rv.Interface(), siteCtx)...)
	}
	return actions
}

// actionsFromValue is the return-type conversion table: Out satisfying
// WebsiteOutput becomes Emit (filtered by ShouldProcess), *Out is the
// Option<Out> analogue, *url.URL and core.NextURL[Ctx] become Visit,
// any slice of the above concatenates element-wise, core.Action and
// []core.Action pass through untouched as the generic escape hatch.
// siteCtx is the Ctx a bare *url.URL/[]*url.URL return is paired with.
func actionsFromValue[Ctx any, Out core.WebsiteOutput](iv any, siteCtx Ctx) []core.Action[Ctx, Out] {
	switch v := iv.(type) {
	case nil:
		return nil
	case core.Action[Ctx, Out]:
		return []core.Action[Ctx, Out]{v}
	case []core.Action[Ctx, Out]:
		return v
	case Out:
		return emitIfProcessable[Ctx, Out](v)
	case []Out:
		var out []core.Action[Ctx, Out]
		for _, o := range v {
			out = append(out, emitIfProcessable[Ctx, Out](o)...)
		}
		return out
	case *Out:
		if v == nil {
			return nil
		}
		return emitIfProcessable[Ctx, Out](*v)
	case *url.URL:
		if v == nil {
			return nil
		}
		return []core.Action[Ctx, Out]{core.Visit[Ctx, Out](v, siteCtx)}
	case []*url.URL:
		var out []core.Action[Ctx, Out]
		for _, u := range v {
			if u != nil {
				out = append(out, core.Visit[Ctx, Out](u, siteCtx))
			}
		}
		return out
	case core.NextURL[Ctx]:
		return []core.Action[Ctx, Out]{core.Visit[Ctx, Out](v.URL(), v.Ctx())}
	case []core.NextURL[Ctx]:
		var out []core.Action[Ctx, Out]
		for _, n := range v {
			out = append(out, core.Visit[Ctx, Out](n.URL(), n.Ctx()))
		}
		return out
	default:
		panic(fmt.Sprintf("handler: return value of type %T does not convert to an action", iv))
	}
}

func emitIfProcessable[Ctx any, Out core.WebsiteOutput](o Out) []core.Action[Ctx, Out] {
	if !o.ShouldProcess() {
		return nil
	}
	return []core.Action[Ctx, Out]{core.Emit[Ctx, Out](o)}
}
