package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time {
	return c.now
}

func newTestServer() *Server {
	return NewServer("run-1", fakeClock{now: time.Unix(100, 0).UTC()}, zap.NewNop())
}

func serve(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerHealthz(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestServer(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServerReadyzFollowsRunState(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, "/readyz").Code)

	s.MarkRunning(10, 3)
	assert.Equal(t, http.StatusOK, serve(t, s, "/readyz").Code)
}

func TestServerRunStatus(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.MarkRunning(5, 2)
	s.MarkFinished(scraper.Stats{Attempted: 5, Rendered: 4, Failed: 1,
		Failures: map[scraper.Kind]int{scraper.KindFetch: 1}})

	rec := serve(t, s, "/v1/run")
	require.Equal(t, http.StatusOK, rec.Code)

	var got RunStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, StateFinished, got.State)
	assert.Equal(t, 5, got.URLs)
	assert.Equal(t, 2, got.Workers)
	assert.True(t, got.StartedAt.Equal(time.Unix(100, 0)))
	require.NotNil(t, got.Stats)
	assert.Equal(t, 4, got.Stats.Rendered)
	assert.Equal(t, 1, got.Stats.Failures[scraper.KindFetch])
}

func TestServerMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	serve(t, s, "/healthz")

	rec := serve(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServerStartAndShutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	addr, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestServerRecoversPanics(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := serve(t, s, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
