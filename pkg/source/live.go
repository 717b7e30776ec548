package source

import (
	"context"
	"strings"
	"time"

	"github.com/Dima09182/depviz/pkg/apk"
	"github.com/Dima09182/depviz/pkg/cache"
	"github.com/Dima09182/depviz/pkg/fetch"
)

// LiveOptions configures a [Live] source. Zero values select defaults.
type LiveOptions struct {
	// IndexName is the index file to fetch (default apk.IndexArchive).
	IndexName string

	// Cache memoises dependency records per archive filename. Nil selects a
	// fresh in-process LRU; pass a shared cache to reuse records across
	// sources in one process.
	Cache cache.Cache

	// RecordTTL bounds how long a memoised record stays valid (0 = no expiry).
	RecordTTL time.Duration

	// Logger receives warnings (optional).
	Logger func(string, ...any)
}

// Live reads an APK repository through a [fetch.Fetcher].
type Live struct {
	fetcher  fetch.Fetcher
	index    *apk.Index
	cache    cache.Cache
	ttl      time.Duration
	warnings []error
}

// NewLive fetches and parses the repository index. An index that cannot be
// fetched or parsed does not fail construction: the source continues with an
// empty index and reports an [IndexUnavailableError] from [Live.Warnings].
// Only cancellation of ctx is returned as an error.
func NewLive(ctx context.Context, f fetch.Fetcher, opts LiveOptions) (*Live, error) {
	if opts.IndexName == "" {
		opts.IndexName = apk.IndexArchive
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	c := opts.Cache
	if c == nil {
		var err error
		if c, err = cache.NewLRUCache(0); err != nil {
			return nil, err
		}
	}

	l := &Live{fetcher: f, cache: c, ttl: opts.RecordTTL}

	data, err := f.Fetch(ctx, opts.IndexName)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil {
		l.index, err = apk.ParseIndexE(data)
	}
	if err != nil {
		l.index = apk.NewIndex(nil)
		warn := &IndexUnavailableError{Location: f.Location() + "/" + opts.IndexName, Err: err}
		l.warnings = append(l.warnings, warn)
		opts.Logger("%v", warn)
	}
	return l, nil
}

// Name returns "live".
func (l *Live) Name() string { return "live" }

// Index returns the parsed repository index.
func (l *Live) Index() *apk.Index { return l.index }

// Warnings returns the non-fatal problems met while opening the source.
func (l *Live) Warnings() []error { return l.warnings }

// Resolve maps a short name to its archive filename. Archive filenames pass
// through unchanged.
func (l *Live) Resolve(ctx context.Context, id string) (string, error) {
	if apk.IsQualified(id) {
		return id, nil
	}
	if file, ok := l.index.Resolve(id); ok {
		return file, nil
	}
	return "", &UnknownPackageError{Name: id}
}

// Dependencies fetches the archive for a resolved filename and returns its
// declared dependencies.
func (l *Live) Dependencies(ctx context.Context, id string) ([]string, error) {
	key := "deps:" + l.fetcher.Location() + "/" + id
	if data, ok, _ := l.cache.Get(ctx, key); ok {
		return decodeRecord(data), nil
	}

	archive, err := l.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	deps, err := apk.ExtractDependencies(archive)
	if err != nil {
		return nil, err
	}
	_ = l.cache.Set(ctx, key, encodeRecord(deps), l.ttl)
	return deps, nil
}

// Info fetches the archive for id (resolving it first) and returns its
// metadata record.
func (l *Live) Info(ctx context.Context, id string) (*apk.PackageInfo, error) {
	file, err := l.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	archive, err := l.fetch(ctx, file)
	if err != nil {
		return nil, err
	}
	return apk.ReadPackageInfo(archive)
}

func (l *Live) fetch(ctx context.Context, file string) ([]byte, error) {
	data, err := l.fetcher.Fetch(ctx, file)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Name: file, Err: err}
	}
	return data, nil
}

func encodeRecord(deps []string) []byte {
	return []byte(strings.Join(deps, "\n"))
}

func decodeRecord(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}
	return strings.Split(string(data), "\n")
}

var (
	_ Source = (*Live)(nil)
	_ Warner = (*Live)(nil)
)
