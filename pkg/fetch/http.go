package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/httputil"
	"github.com/Dima09182/depviz/pkg/observability"
)

const (
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultAttempts is the number of tries for a transient failure.
	DefaultAttempts = 3

	// DefaultRetryDelay is the wait before the first retry; it doubles after each.
	DefaultRetryDelay = 500 * time.Millisecond
)

// HTTPOptions configures an [HTTP] fetcher. Zero values select defaults.
type HTTPOptions struct {
	Timeout    time.Duration     // Per-request timeout (default DefaultTimeout)
	Attempts   int               // Tries per file (default DefaultAttempts)
	RetryDelay time.Duration     // Initial retry delay (default DefaultRetryDelay)
	MaxSize    int64             // Response size limit (default DefaultMaxSize)
	Headers    map[string]string // Extra request headers, e.g. User-Agent
	Client     *http.Client      // Underlying client (default: a new http.Client)
}

// HTTP fetches files from an HTTP(S) repository mirror.
type HTTP struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
	opts    HTTPOptions
}

// NewHTTP creates a fetcher for the repository at baseURL
// (e.g. https://dl-cdn.alpinelinux.org/alpine/latest-stable/main/x86_64).
func NewHTTP(baseURL string, opts HTTPOptions) (*HTTP, error) {
	if err := deperrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "invalid repository URL %q", baseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	return &HTTP{base: u, http: client, headers: opts.Headers, opts: opts}, nil
}

// Location returns the base URL.
func (h *HTTP) Location() string { return h.base.String() }

// URL returns the absolute URL of the named file.
func (h *HTTP) URL(name string) string {
	return h.base.JoinPath(name).String()
}

// Fetch downloads the named file. Transient failures (transport errors, 5xx,
// 429) are retried with exponential backoff; 404 yields [ErrNotFound].
func (h *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, h.opts.Attempts, h.opts.RetryDelay, func() error {
		var err error
		data, err = h.get(ctx, h.URL(name))
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (h *HTTP) get(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := h.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.opts.MaxSize+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: reading body: %v", ErrNetwork, err)}
	}
	if int64(len(data)) > h.opts.MaxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, h.opts.MaxSize)
	}
	return data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, rateLimited(resp))}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

func rateLimited(resp *http.Response) error {
	e := &deperrors.RateLimitedError{}
	if s := resp.Header.Get("Retry-After"); s != "" {
		fmt.Sscanf(s, "%d", &e.RetryAfter)
	}
	return e
}

var _ Fetcher = (*HTTP)(nil)
