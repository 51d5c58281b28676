package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/gatrack/pkg/analytics"
	"github.com/vnykmshr/gatrack/pkg/ratelimit/bucket"
)

type sink struct {
	mu   sync.Mutex
	hits []url.Values
}

func (s *sink) Send(_ context.Context, v url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = append(s.hits, v)
	return nil
}

func newTestMux(t *testing.T, capacity float64) (http.Handler, *sink) {
	t.Helper()
	limiter, err := bucket.New(capacity, 1, bucket.Hour)
	require.NoError(t, err)

	s := &sink{}
	tr, err := analytics.New(limiter, s)
	require.NoError(t, err)
	require.NoError(t, tr.Init(analytics.AppInfo{TrackingID: "UA-1-1", ClientID: "cid"}))
	return newMux(tr, nil, true), s
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return w
}

func TestTrackEndpoints(t *testing.T) {
	h, s := newTestMux(t, 10)

	assert.Equal(t, http.StatusAccepted, post(h, "/track/screen", `{"name":"home"}`).Code)
	assert.Equal(t, http.StatusAccepted, post(h, "/track/event", `{"action":"tap","label":"buy","value":2}`).Code)
	assert.Equal(t, http.StatusAccepted, post(h, "/track/timing", `{"category":"net","variable":"load","time_ms":250}`).Code)

	require.Len(t, s.hits, 3)
	assert.Equal(t, "home", s.hits[0].Get("cd"))
	assert.Equal(t, "mobile", s.hits[1].Get("ec"))
	assert.Equal(t, "2", s.hits[1].Get("ev"))
	assert.Equal(t, "250", s.hits[2].Get("utt"))
}

func TestTrackEndpointsRejectBadInput(t *testing.T) {
	h, s := newTestMux(t, 10)

	assert.Equal(t, http.StatusBadRequest, post(h, "/track/screen", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/track/screen", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/track/event", `{"category":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/track/timing", `{"category":"x"}`).Code)
	assert.Empty(t, s.hits)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/track/screen", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTrackEndpointRateLimited(t *testing.T) {
	h, s := newTestMux(t, 2)

	assert.Equal(t, http.StatusAccepted, post(h, "/track/screen", `{"name":"a"}`).Code)
	assert.Equal(t, http.StatusAccepted, post(h, "/track/screen", `{"name":"b"}`).Code)

	w := post(h, "/track/screen", `{"name":"c"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "dropped")
	assert.Len(t, s.hits, 2)
}

func TestHealthz(t *testing.T) {
	h, _ := newTestMux(t, 1)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["initialized"])
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestMux(t, 1)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
