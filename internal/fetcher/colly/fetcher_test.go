package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		_, _ = w.Write([]byte("<p>info@acme.com</p>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgents: []string{"agent-a"}, Timeout: time.Second, MaxRetries: 3})
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<p>info@acme.com</p>", string(body))
	got := <-headers
	assert.Equal(t, "agent-a", got.Get("User-Agent"))
	assert.Contains(t, got.Get("Accept"), "text/html")
}

func TestFetchRetriesWithRotatingAgents(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		agents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.UserAgent())
		n := len(agents)
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	f := New(Config{
		UserAgents: []string{"a", "b"},
		Timeout:    time.Second,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}, WithPacer(pacer))

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "a"}, agents)
	assert.Equal(t, int32(3), pacer.waits.Load())
}

func TestFetchFailsClosed(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second, MaxRetries: 2, RetryDelay: time.Millisecond})
	body, err := f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Nil(t, body)
	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := New(Config{Timeout: time.Second, MaxRetries: 3, RetryDelay: time.Hour})
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	var (
		body     []byte
		fetchErr error
	)
	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &body, &fetchErr)
	require.NotNil(t, hooks.onRequest)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	collyReq := &colly.Request{Headers: &http.Header{}}
	hooks.onRequest(collyReq)
	assert.Equal(t, "en-US,en;q=0.5", collyReq.Headers.Get("Accept-Language"))

	hooks.onResponse(&colly.Response{StatusCode: http.StatusOK, Body: []byte("body")})
	assert.Equal(t, "body", string(body))

	hooks.onError(&colly.Response{StatusCode: http.StatusForbidden}, errors.New("Forbidden"))
	require.Error(t, fetchErr)
	assert.Equal(t, "status 403: Forbidden", fetchErr.Error())
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	assert.Equal(t, DefaultUserAgents, f.cfg.UserAgents)
	assert.Equal(t, 1, f.cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, f.cfg.Timeout)
	assert.True(t, f.baseCollector.IgnoreRobotsTxt)
	assert.Equal(t, DefaultUserAgents[0], f.userAgent())
	assert.Equal(t, DefaultUserAgents[1], f.userAgent())
}

type countingPacer struct{ waits atomic.Int32 }

func (p *countingPacer) Wait(context.Context) error {
	p.waits.Add(1)
	return nil
}

type stubHooks struct {
	onRequest  colly.RequestCallback
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnRequest(cb colly.RequestCallback) {
	s.onRequest = cb
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
