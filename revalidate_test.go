package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type revalidationSink struct {
	mu    sync.Mutex
	calls []map[string]string
	srv   *httptest.Server
}

func newRevalidationSink(t *testing.T, status int) *revalidationSink {
	t.Helper()
	sink := &revalidationSink{}
	sink.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			sink.mu.Lock()
			sink.calls = append(sink.calls, body)
			sink.mu.Unlock()
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(sink.srv.Close)
	return sink
}

func (s *revalidationSink) received() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.calls...)
}

func TestRevalidator_Posts(t *testing.T) {
	sink := newRevalidationSink(t, http.StatusOK)
	rv := newRevalidator(sink.srv.URL, "s3cret", zaptest.NewLogger(t))

	rv.trigger("projects")
	rv.wait()

	assert.Equal(t, []map[string]string{{"secret": "s3cret", "resource": "projects"}}, sink.received())
}

func TestRevalidator_FailureIsIgnored(t *testing.T) {
	sink := newRevalidationSink(t, http.StatusUnauthorized)
	rv := newRevalidator(sink.srv.URL, "wrong", zaptest.NewLogger(t))

	rv.trigger("stats")
	rv.wait()
	assert.Len(t, sink.received(), 1)

	down := newRevalidator("http://127.0.0.1:1/revalidate", "", zaptest.NewLogger(t))
	down.trigger("stats")
	down.wait()
}

func TestRevalidator_Disabled(t *testing.T) {
	rv := newRevalidator("", "", zaptest.NewLogger(t))
	rv.trigger("projects")
	rv.wait()

	var none *revalidator
	none.trigger("projects")
	none.wait()
}

func TestRevalidator_AfterWrites(t *testing.T) {
	sink := newRevalidationSink(t, http.StatusOK)
	cfg := testConfig()
	cfg.RevalidationURL = sink.srv.URL
	cfg.RevalidationSecret = "s3cret"
	srv := newTestServerWith(t, cfg)
	h := srv.routes()

	p := mustCreate(t, h, "/projects", `{"title":"T","description":"D"}`)
	rec := do(t, h, http.MethodPut, idPath("/projects", p), `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, idPath("/projects", p), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Failed writes do not notify.
	rec = do(t, h, http.MethodPost, "/skills", `{"name":"Go","category_id":5}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	srv.close()
	got := sink.received()
	require.Len(t, got, 2)
	for _, call := range got {
		assert.Equal(t, "projects", call["resource"])
		assert.Equal(t, "s3cret", call["secret"])
	}
}
