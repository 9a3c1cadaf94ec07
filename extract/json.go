package extract

import (
	"context"
	"encoding/json"

	"github.com/crawlkit/crawlkit/internal/core"
)

// JSON decodes the response body as JSON into T; any decode failure
// is absence, not an error.
type JSON[T any] struct {
	value T
}

func (JSON[T]) TryBuild(_ context.Context, resp *core.Response, _ any) (JSON[T], bool) {
	var v T
	if err := json.Unmarshal(resp.Body(), &v); err != nil {
		return JSON[T]{}, false
	}
	return JSON[T]{value: v}, true
}

func (j JSON[T]) Value() T { return j.value }
