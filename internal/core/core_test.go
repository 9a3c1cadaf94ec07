package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testOutput struct{ keep bool }

func (o testOutput) ShouldProcess() bool { return o.keep }

func TestVisitAndEmitActions(t *testing.T) {
	u, _ := url.Parse("https://example.com/a")

	visit := Visit[int, testOutput](u, 7)
	assert.Equal(t, KindVisit, visit.Kind())
	assert.Equal(t, u, visit.Next().URL())
	assert.Equal(t, 7, visit.Next().Ctx())

	emit := Emit[int, testOutput](testOutput{keep: true})
	assert.Equal(t, KindEmit, emit.Kind())
	assert.True(t, emit.Out().ShouldProcess())
}

func TestResponseAccessors(t *testing.T) {
	u, _ := url.Parse("https://example.com/")
	resp := NewResponseForTest(u, []byte("body"))
	assert.Equal(t, u, resp.FinalURL())
	assert.Equal(t, []byte("body"), resp.Body())
	assert.Equal(t, 200, resp.StatusCode())
}

func TestNextURL(t *testing.T) {
	u, _ := url.Parse("https://example.com/p")
	n := NewNextURL(u, "ctx-value")
	assert.Equal(t, u, n.URL())
	assert.Equal(t, "ctx-value", n.Ctx())
}
