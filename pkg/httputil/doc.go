// Package httputil provides HTTP utilities for repository clients.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped with [RetryableError] are retried; everything else
// (404s, malformed responses) is returned on the first attempt. The delay
// doubles after each failed attempt:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    return fetchOnce(ctx, url)
//	})
//
// # Configuration
//
// [RetryWithBackoff] uses the defaults suitable for most callers:
//
//   - Max attempts: 3
//   - Base backoff: 1 second
//
// Nothing in this package caches responses: every run reads the repository
// afresh.
package httputil
