package handler

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlkit/crawlkit/extract"
	"github.com/crawlkit/crawlkit/internal/core"
)

type out struct{ v string }

func (o out) ShouldProcess() bool { return o.v != "" }

func mustResponse(t *testing.T) *core.Response {
	t.Helper()
	u, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	return core.NewResponseForTest(u, []byte("<html><body>hi</body></html>"))
}

func TestRegisterPanicsOnNonFunc(t *testing.T) {
	assert.Panics(t, func() {
		Register[struct{}, out](42)
	})
}

func TestRegisterPanicsOnNonExtractorParam(t *testing.T) {
	assert.Panics(t, func() {
		Register[struct{}, out](func(x int) out { return out{} })
	})
}

func TestInvokeSingleReturnEmit(t *testing.T) {
	h := Register[struct{}, out](func(u extract.URL) out {
		return out{v: u.Value().String()}
	})
	actions := h.Invoke(context.Background(), mustResponse(t), struct{}{})
	require.Len(t, actions, 1)
	assert.Equal(t, core.KindEmit, actions[0].Kind())
}

func TestInvokeTupleReturnConcatenatesInOrder(t *testing.T) {
	h := Register[struct{}, out](func(u extract.URL) (out, *url.URL) {
		next, _ := url.Parse("https://example.com/next")
		return out{v: "page"}, next
	})
	actions := h.Invoke(context.Background(), mustResponse(t), struct{}{})
	require.Len(t, actions, 2)
	assert.Equal(t, core.KindEmit, actions[0].Kind())
	assert.Equal(t, core.KindVisit, actions[1].Kind())
}

func TestInvokeReturnsNilWhenExtractorFails(t *testing.T) {
	h := Register[struct{}, out](func(j extract.JSON[struct{ X int }]) out {
		return out{v: "never"}
	})
	actions := h.Invoke(context.Background(), mustResponse(t), struct{}{})
	assert.Nil(t, actions)
}

func TestActionsFromValueShouldProcessFilter(t *testing.T) {
	actions := actionsFromValue[struct{}, out](out{v: ""}, struct{}{})
	assert.Nil(t, actions)

	actions = actionsFromValue[struct{}, out](out{v: "x"}, struct{}{})
	require.Len(t, actions, 1)
}

func TestActionsFromValueNilPointerIsDropped(t *testing.T) {
	var p *out
	actions := actionsFromValue[struct{}, out](p, struct{}{})
	assert.Nil(t, actions)
}

func TestActionsFromValueSliceOfURLs(t *testing.T) {
	a, _ := url.Parse("https://example.com/a")
	b, _ := url.Parse("https://example.com/b")
	actions := actionsFromValue[struct{}, out]([]*url.URL{a, b}, struct{}{})
	require.Len(t, actions, 2)
	assert.Equal(t, core.KindVisit, actions[0].Kind())
	assert.Equal(t, core.KindVisit, actions[1].Kind())
}

func TestActionsFromValuePanicsOnUnconvertibleType(t *testing.T) {
	assert.Panics(t, func() {
		actionsFromValue[struct{}, out](42, struct{}{})
	})
}
