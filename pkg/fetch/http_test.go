package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/httputil"
)

func fastOptions() HTTPOptions {
	return HTTPOptions{Attempts: 3, RetryDelay: time.Millisecond, Timeout: time.Second}
}

func TestNewHTTP(t *testing.T) {
	h, err := NewHTTP("https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64/", HTTPOptions{})
	if err != nil {
		t.Fatalf("NewHTTP() error: %v", err)
	}
	if h.opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", h.opts.Timeout, DefaultTimeout)
	}
	if h.opts.MaxSize != DefaultMaxSize {
		t.Errorf("MaxSize = %d, want %d", h.opts.MaxSize, DefaultMaxSize)
	}
	want := "https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64/APKINDEX.tar.gz"
	if got := h.URL("APKINDEX.tar.gz"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestNewHTTPInvalid(t *testing.T) {
	for _, raw := range []string{"", "ftp://mirror/alpine", "not a url"} {
		if _, err := NewHTTP(raw, HTTPOptions{}); err == nil {
			t.Errorf("NewHTTP(%q) expected error", raw)
		}
	}
}

func TestHTTPFetch(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	opts := fastOptions()
	opts.Headers = map[string]string{"User-Agent": "depviz/test"}
	h, err := NewHTTP(server.URL+"/alpine/main/x86_64", opts)
	if err != nil {
		t.Fatal(err)
	}

	data, err := h.Fetch(context.Background(), "busybox-1.36.1-r29.apk")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Fetch() = %q, want %q", data, "payload")
	}
	if gotPath != "/alpine/main/x86_64/busybox-1.36.1-r29.apk" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUA != "depviz/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestHTTPFetchNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	h, _ := NewHTTP(server.URL, fastOptions())
	_, err := h.Fetch(context.Background(), "missing.apk")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Fetch() error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, got %d calls", calls.Load())
	}
}

func TestHTTPFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	h, _ := NewHTTP(server.URL, fastOptions())
	data, err := h.Fetch(context.Background(), "APKINDEX.tar.gz")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "ok" || calls.Load() != 3 {
		t.Errorf("Fetch() = %q after %d calls", data, calls.Load())
	}
}

func TestHTTPFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	h, _ := NewHTTP(server.URL, fastOptions())
	_, err := h.Fetch(context.Background(), "x.apk")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Fetch() error = %v, want ErrNetwork", err)
	}
	if !httputil.IsRetryable(err) {
		t.Error("exhausted server error should still be marked retryable")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTPFetchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	opts := fastOptions()
	opts.Attempts = 1
	h, _ := NewHTTP(server.URL, opts)
	_, err := h.Fetch(context.Background(), "x.apk")

	var rl *deperrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("Fetch() error = %v, want RateLimitedError", err)
	}
	if rl.RetryAfter != 7 {
		t.Errorf("RetryAfter = %d, want 7", rl.RetryAfter)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("rate limit should classify as ErrNetwork")
	}
}

func TestHTTPFetchClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	h, _ := NewHTTP(server.URL, fastOptions())
	_, err := h.Fetch(context.Background(), "x.apk")
	if !errors.Is(err, ErrNetwork) || httputil.IsRetryable(err) {
		t.Errorf("Fetch() error = %v, want non-retryable ErrNetwork", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	opts := fastOptions()
	opts.Attempts = 1
	opts.Timeout = 20 * time.Millisecond
	h, _ := NewHTTP(server.URL, opts)

	_, err := h.Fetch(context.Background(), "slow.apk")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Fetch() error = %v, want ErrNetwork", err)
	}
}

func TestHTTPFetchTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	opts := fastOptions()
	opts.MaxSize = 10
	h, _ := NewHTTP(server.URL, opts)
	_, err := h.Fetch(context.Background(), "big.apk")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
	}
}

func TestHTTPFetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := fastOptions()
	opts.RetryDelay = time.Hour
	h, _ := NewHTTP(server.URL, opts)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := h.Fetch(ctx, "x.apk")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
