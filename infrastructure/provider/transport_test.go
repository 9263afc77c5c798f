package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func countingServer(count *atomic.Int32, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
}

func roundTrip(t *testing.T, rt http.RoundTripper, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(data)
}

func TestCachingTransport_CacheHit(t *testing.T) {
	var count atomic.Int32
	srv := countingServer(&count, http.StatusOK)
	defer srv.Close()

	transport := NewCachingTransport(t.TempDir(), srv.Client().Transport)

	for range 3 {
		resp, body := roundTrip(t, transport, http.MethodPost, srv.URL+"/v1/embeddings", `{"input":"hello"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, `{"input":"hello"}`, body)
		require.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	}
	require.Equal(t, int32(1), count.Load())
}

func TestCachingTransport_DifferentBodies(t *testing.T) {
	var count atomic.Int32
	srv := countingServer(&count, http.StatusOK)
	defer srv.Close()

	transport := NewCachingTransport(t.TempDir(), srv.Client().Transport)

	_, a := roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"hello"}`)
	_, b := roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"world"}`)

	require.Equal(t, `{"input":"hello"}`, a)
	require.Equal(t, `{"input":"world"}`, b)
	require.Equal(t, int32(2), count.Load())
}

func TestCachingTransport_SkipsErrors(t *testing.T) {
	var count atomic.Int32
	srv := countingServer(&count, http.StatusTooManyRequests)
	defer srv.Close()

	dir := t.TempDir()
	transport := NewCachingTransport(dir, srv.Client().Transport)

	for range 2 {
		resp, _ := roundTrip(t, transport, http.MethodPost, srv.URL, `{}`)
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	}
	require.Equal(t, int32(2), count.Load())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCachingTransport_PassesThroughGet(t *testing.T) {
	var count atomic.Int32
	srv := countingServer(&count, http.StatusOK)
	defer srv.Close()

	transport := NewCachingTransport(t.TempDir(), srv.Client().Transport)
	roundTrip(t, transport, http.MethodGet, srv.URL, "")
	roundTrip(t, transport, http.MethodGet, srv.URL, "")
	require.Equal(t, int32(2), count.Load())
}

func TestCachingTransport_CorruptEntryFallsThrough(t *testing.T) {
	var count atomic.Int32
	srv := countingServer(&count, http.StatusOK)
	defer srv.Close()

	dir := t.TempDir()
	transport := NewCachingTransport(dir, srv.Client().Transport)
	roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"x"}`)

	files, err := filepath.Glob(filepath.Join(dir, "*", "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("not json"), 0o644))

	_, body := roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"x"}`)
	require.Equal(t, `{"input":"x"}`, body)
	require.Equal(t, int32(2), count.Load())
}
