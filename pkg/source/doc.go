// Package source provides the package sources a dependency traversal reads
// from.
//
// A [Source] answers two questions about a package identifier: what is its
// fully-qualified name ([Source.Resolve]) and what does it depend on
// ([Source.Dependencies]). Two variants exist:
//
//   - [Live] reads a real APK repository through a [fetch.Fetcher]: the
//     repository index resolves short names to archive filenames, and each
//     archive's `.PKGINFO` lists its dependencies.
//   - [Static] reads a text [Definition] (one `name: dep dep` line per
//     package) for deterministic tests and offline experiments.
//
// [Open] picks the variant from a repository location and a [Mode].
//
// # Errors
//
// Per-package failures are typed so a traversal can degrade instead of
// aborting:
//
//   - [UnknownPackageError]: the index does not list the name
//   - [FetchError]: the archive could not be retrieved
//   - [IndexUnavailableError]: the index could not be read (reported through
//     [Live.Warnings]; the source continues with an empty index)
//
// A malformed static definition is a [StaticRepoFormatError], which is fatal.
//
// [fetch.Fetcher]: github.com/Dima09182/depviz/pkg/fetch.Fetcher
package source

import "context"

// Source resolves package identifiers and lists their dependencies.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the variant ("live" or "static").
	Name() string

	// Resolve maps a package identifier to its fully-qualified form.
	Resolve(ctx context.Context, id string) (string, error)

	// Dependencies returns the declared dependencies of a resolved identifier,
	// in declaration order. The slice is never nil on success.
	Dependencies(ctx context.Context, id string) ([]string, error)
}

// Warner is implemented by sources that degraded while being opened.
type Warner interface {
	// Warnings returns non-fatal problems encountered so far.
	Warnings() []error
}
