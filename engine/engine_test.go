package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlkit/crawlkit/internal/core"
)

func TestShardedSetInsertIsTestAndSet(t *testing.T) {
	s := NewShardedSet(4)
	assert.True(t, s.Insert("/a"))
	assert.False(t, s.Insert("/a"))
	assert.True(t, s.Insert("/b"))
	assert.Equal(t, 2, s.Size())
}

func TestShardedSetConcurrentInsertIsAtomic(t *testing.T) {
	s := NewShardedSet(8)
	var wg sync.WaitGroup
	results := make([]bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Insert("/same-path")
		}(i)
	}
	wg.Wait()

	trueCount := 0
	for _, r := range results {
		if r {
			trueCount++
		}
	}
	assert.Equal(t, 1, trueCount)
	assert.Equal(t, 1, s.Size())
}

func TestHTTPGetterReturnsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	g := newHTTPGetter(defaultHTTPClient())
	resp, _, cerr := g.Get(context.Background(), u)
	require.Nil(t, cerr)
	assert.Equal(t, []byte("hello"), resp.Body())
	assert.Equal(t, 200, resp.StatusCode())
}

func TestHTTPGetterClassifiesNetworkFailure(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)

	g := newHTTPGetter(&http.Client{Timeout: time.Second})
	_, _, cerr := g.Get(context.Background(), u)
	require.NotNil(t, cerr)
	fe, ok := cerr.(*fetchError)
	require.True(t, ok)
	assert.NotEmpty(t, fe.Error())
}

type stubOutput struct{ v string }

func (o stubOutput) ShouldProcess() bool { return o.v != "" }

func TestSchedulerSingleSeedNoHandlersProducesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()
	u, _ := url.Parse(server.URL)

	sched := NewScheduler(Config[struct{}, stubOutput]{
		Seeds: []*url.URL{u},
	})
	var got []stubOutput
	var mu sync.Mutex
	sched.Init(func(o stubOutput) bool {
		mu.Lock()
		got = append(got, o)
		mu.Unlock()
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sched.Launch(ctx)

	assert.Empty(t, got)
}

// handlerFunc adapts a closure into a core.Handler for direct engine
// testing without going through package handler's reflection.
type handlerFunc[Ctx any, Out core.WebsiteOutput] func(ctx context.Context, resp *core.Response, siteCtx Ctx) []core.Action[Ctx, Out]

func (f handlerFunc[Ctx, Out]) Invoke(ctx context.Context, resp *core.Response, siteCtx Ctx) []core.Action[Ctx, Out] {
	return f(ctx, resp, siteCtx)
}

func TestSchedulerRoutesEmitAndVisit(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	root, _ := url.Parse(server.URL + "/")
	child, _ := url.Parse(server.URL + "/child")

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("root"))
	})
	mux.HandleFunc("/child", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("child"))
	})

	var visited int
	var mu sync.Mutex

	h := handlerFunc[struct{}, stubOutput](func(ctx context.Context, resp *core.Response, siteCtx struct{}) []core.Action[struct{}, stubOutput] {
		mu.Lock()
		visited++
		mu.Unlock()
		if resp.FinalURL().Path == "/" || resp.FinalURL().Path == "" {
			return []core.Action[struct{}, stubOutput]{
				core.Visit[struct{}, stubOutput](child, struct{}{}),
				core.Emit[struct{}, stubOutput](stubOutput{v: "root-output"}),
			}
		}
		return []core.Action[struct{}, stubOutput]{
			core.Emit[struct{}, stubOutput](stubOutput{v: "child-output"}),
		}
	})

	sched := NewScheduler(Config[struct{}, stubOutput]{
		Seeds:    []*url.URL{root},
		Handlers: []core.Handler[struct{}, stubOutput]{h},
	})

	var got []stubOutput
	sched.Init(func(o stubOutput) bool {
		mu.Lock()
		got = append(got, o)
		mu.Unlock()
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sched.Launch(ctx)

	assert.Equal(t, 2, visited)
	require.Len(t, got, 2)
}

func TestSchedulerRejectsCrossHostVisit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()
	root, _ := url.Parse(server.URL + "/")
	other, _ := url.Parse("https://not-the-same-host.example/z")

	var fetchCount int
	var mu sync.Mutex
	h := handlerFunc[struct{}, stubOutput](func(ctx context.Context, resp *core.Response, siteCtx struct{}) []core.Action[struct{}, stubOutput] {
		mu.Lock()
		fetchCount++
		mu.Unlock()
		return []core.Action[struct{}, stubOutput]{
			core.Visit[struct{}, stubOutput](other, struct{}{}),
		}
	})

	sched := NewScheduler(Config[struct{}, stubOutput]{
		Seeds:    []*url.URL{root},
		Handlers: []core.Handler[struct{}, stubOutput]{h},
	})
	sched.Init(func(o stubOutput) bool { return true })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sched.Launch(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fetchCount)
}
