package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dima09182/depviz/pkg/apk/apktest"
	"github.com/Dima09182/depviz/pkg/cache"
	"github.com/Dima09182/depviz/pkg/pipeline"
)

func newTestServer(t *testing.T, repo string) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	c, err := cache.NewLRUCache(64)
	require.NoError(t, err)

	runner := pipeline.NewRunner(c, logger)
	t.Cleanup(func() { _ = runner.Close() })

	ts := httptest.NewServer(New(Config{Repo: repo, MaxDepth: 3}, runner, logger))
	t.Cleanup(ts.Close)
	return ts
}

func dirRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := apktest.Repo(
		apktest.Entry{Name: "busybox", Version: "1.36.1-r29", Depends: []string{"musl"}},
		apktest.Entry{Name: "musl", Version: "1.2.5-r0"},
	)
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func staticRepo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.txt")
	require.NoError(t, os.WriteFile(path, []byte("A: B\nB: C\nC:\n"), 0o644))
	return path
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	resp, body := get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var h HealthResponse
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Version)
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "trace-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get(RequestIDHeader))
}

func TestGraphJSON(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	resp, body := get(t, ts.URL+"/v1/graph?package=A&max_depth=1")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Len(t, resp.Header.Get("X-Graph-Hash"), 64)

	var doc struct {
		Root  string `json:"root"`
		RunID string `json:"run_id"`
		Nodes []struct {
			Name  string `json:"name"`
			Depth int    `json:"depth"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "A", doc.Root)
	assert.Equal(t, resp.Header.Get("X-Run-ID"), doc.RunID)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "B", doc.Nodes[1].Name)
	assert.Equal(t, 1, doc.Nodes[1].Depth)
}

func TestGraphDefaultDepth(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	_, body := get(t, ts.URL+"/v1/graph?package=A")
	assert.Contains(t, string(body), `"name": "C"`)
}

func TestGraphFormats(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"text", "text/plain; charset=utf-8", "A"},
		{"dot", "text/vnd.graphviz; charset=utf-8", "digraph"},
		{"yaml", "application/yaml", "root: A"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/v1/graph?package=A&format="+tt.format)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestGraphErrors(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"missing package", "", http.StatusBadRequest, "INVALID_PACKAGE"},
		{"negative depth", "package=A&max_depth=-1", http.StatusBadRequest, "INVALID_DEPTH"},
		{"non-numeric depth", "package=A&max_depth=deep", http.StatusBadRequest, "INVALID_DEPTH"},
		{"bad format", "package=A&format=png", http.StatusBadRequest, "INVALID_FORMAT"},
		{"traversal", "package=..%2Fetc", http.StatusBadRequest, "INVALID_PACKAGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/v1/graph?"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decodeError(t, body)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), e.RequestID)
		})
	}
}

func TestGraphLiveDiagnostics(t *testing.T) {
	dir := dirRepo(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "musl-1.2.5-r0.apk")))
	ts := newTestServer(t, dir)

	resp, body := get(t, ts.URL+"/v1/graph?package=busybox")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"kind": "fetch"`)
	assert.Contains(t, string(body), `"package": "musl"`)
}

func TestResolve(t *testing.T) {
	ts := newTestServer(t, dirRepo(t))

	resp, body := get(t, ts.URL+"/v1/resolve/musl")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var rr ResolveResponse
	require.NoError(t, json.Unmarshal(body, &rr))
	assert.Equal(t, ResolveResponse{Name: "musl", Filename: "musl-1.2.5-r0.apk"}, rr)

	resp, body = get(t, ts.URL+"/v1/resolve/busybox-1.36.1-r29.apk")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &rr))
	assert.Equal(t, "busybox", rr.Name)

	resp, body = get(t, ts.URL+"/v1/resolve/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PACKAGE_NOT_FOUND", decodeError(t, body).Code)
}

func TestResolveStaticRepo(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	resp, body := get(t, ts.URL+"/v1/resolve/A")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED", decodeError(t, body).Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, staticRepo(t))

	resp, body := get(t, ts.URL+"/v2/graph")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)

	resp, err := http.Post(ts.URL+"/v1/graph", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRepositoryOpenedOncePerTTL(t *testing.T) {
	files := apktest.Repo(
		apktest.Entry{Name: "busybox", Version: "1.36.1-r29", Depends: []string{"musl"}},
		apktest.Entry{Name: "musl", Version: "1.2.5-r0"},
	)
	var indexFetches atomic.Int32
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "APKINDEX.tar.gz" {
			indexFetches.Add(1)
		}
		data, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(mirror.Close)

	ts := newTestServer(t, mirror.URL)

	for i := 0; i < 3; i++ {
		resp, body := get(t, ts.URL+"/v1/graph?package=busybox")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.Contains(t, string(body), `"name": "musl"`)
	}
	resp, _ := get(t, ts.URL+"/v1/resolve/musl")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int32(1), indexFetches.Load())
}
