// Package fetch retrieves repository files (APKINDEX.tar.gz and .apk
// archives) by name from a remote mirror or a local directory.
//
// A [Fetcher] knows one repository location; callers ask for files relative
// to it. [HTTP] talks to an HTTP(S) mirror with per-request timeouts, retry
// of transient failures and a response size limit. [Dir] reads a local
// mirror directory.
//
// Failures are classified with [ErrNotFound] and [ErrNetwork] so callers can
// distinguish a missing file from a broken transport:
//
//	data, err := f.Fetch(ctx, "busybox-1.36.1-r29.apk")
//	if errors.Is(err, fetch.ErrNotFound) {
//	    // the mirror does not have it
//	}
package fetch

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the repository has no file by that name.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures (timeouts, connection
	// errors, unexpected HTTP statuses).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a file exceeds the configured size limit.
	ErrTooLarge = errors.New("resource too large")
)

// DefaultMaxSize bounds a single fetched file.
const DefaultMaxSize int64 = 64 << 20

// Fetcher retrieves repository files by name.
//
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch returns the full contents of the named file.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Location describes where files come from (a base URL or directory).
	Location() string
}
