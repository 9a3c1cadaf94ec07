// Package handler implements the reflection-based dispatch that
// turns an arbitrary Go function, whose parameters are extractors,
// into a core.Handler. Arity is erased through reflect.Value.Call
// rather than per-arity generated adapters, per the framework's own
// design notes: the mechanism is free, only the dispatch and
// conversion behaviour are specified.
package handler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/crawlkit/crawlkit/internal/core"
)

// Register adapts fn into a core.Handler. fn must be a function whose
// parameters each implement core.Extractor[ParamType] (the built-in
// extractors in package extract, or a user-defined one matching the
// same shape) and whose return value(s) are convertible into actions
// per actionsFromValue.
func Register[Ctx any, Out core.WebsiteOutput](fn any) core.Handler[Ctx, Out] {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("handler.Register: %T is not a function", fn))
	}
	for i := 0; i < t.NumIn(); i++ {
		if _, ok := t.In(i).MethodByName("TryBuild"); !ok {
			panic(fmt.Sprintf("handler.Register: parameter %d (%s) has no TryBuild method, it is not an extractor", i, t.In(i)))
		}
	}
	return &reflectedHandler[Ctx, Out]{fnVal: v, fnType: t}
}

type reflectedHandler[Ctx any, Out core.WebsiteOutput] struct {
	fnVal  reflect.Value
	fnType reflect.Type
}

func (h *reflectedHandler[Ctx, Out]) Invoke(ctx context.Context, resp *core.Response, siteCtx Ctx) []core.Action[Ctx, Out] {
	n := h.fnType.NumIn()
	args := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		arg, ok := resolveExtractor(ctx, resp, siteCtx, h.fnType.In(i))
		if !ok {
			return nil
		}
		args[i] = arg
	}
	results := h.fnVal.Call(args)
	return actionsFromReturn[Ctx, Out](results, siteCtx)
}

// resolveExtractor builds the zero value of paramType and invokes its
// TryBuild method via reflection, since paramType is only known at
// runtime from the handler function's signature.
func resolveExtractor(ctx context.Context, resp *core.Response, siteCtx any, paramType reflect.Type) (reflect.Value, bool) {
	zero := reflect.New(paramType).Elem()
	method := zero.MethodByName("TryBuild")
	out := method.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(resp),
		reflect.ValueOf(siteCtx),
	})
	return out[0], out[1].Bool()
}
