package source

import (
	"context"
	"errors"
	"fmt"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/fetch"
)

var (
	// ErrUnknownPackage matches every [UnknownPackageError].
	ErrUnknownPackage = errors.New("unknown package")

	// ErrFetch matches every [FetchError].
	ErrFetch = errors.New("fetch failed")

	// ErrIndexUnavailable matches every [IndexUnavailableError].
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrStaticRepoFormat matches every [StaticRepoFormatError].
	ErrStaticRepoFormat = errors.New("malformed static repository")
)

// UnknownPackageError reports a short name the repository index does not list.
type UnknownPackageError struct {
	Name string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("%s: %q not in repository index", ErrUnknownPackage, e.Name)
}

func (e *UnknownPackageError) Is(target error) bool {
	return target == ErrUnknownPackage
}

func (e *UnknownPackageError) Code() deperrors.Code {
	return deperrors.ErrCodePackageNotFound
}

// FetchError reports a package archive that could not be retrieved.
type FetchError struct {
	Name string // Qualified filename
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetch, e.Name, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Code classifies the underlying failure.
func (e *FetchError) Code() deperrors.Code {
	switch {
	case errors.Is(e.Err, fetch.ErrNotFound):
		return deperrors.ErrCodeFileNotFound
	case errors.Is(e.Err, context.DeadlineExceeded):
		return deperrors.ErrCodeTimeout
	default:
		return deperrors.ErrCodeNetwork
	}
}

// IndexUnavailableError reports a repository index that could not be
// fetched or parsed.
type IndexUnavailableError struct {
	Location string
	Err      error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIndexUnavailable, e.Location, e.Err)
}

func (e *IndexUnavailableError) Unwrap() error {
	return e.Err
}

func (e *IndexUnavailableError) Is(target error) bool {
	return target == ErrIndexUnavailable
}

func (e *IndexUnavailableError) Code() deperrors.Code {
	return deperrors.ErrCodeIndexUnavailable
}

// StaticRepoFormatError reports a malformed line in a static definition.
type StaticRepoFormatError struct {
	Path   string // File the definition came from, if known
	Line   int    // 1-based line number
	Reason string
}

func (e *StaticRepoFormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s:%d: %s", ErrStaticRepoFormat, e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: line %d: %s", ErrStaticRepoFormat, e.Line, e.Reason)
}

func (e *StaticRepoFormatError) Is(target error) bool {
	return target == ErrStaticRepoFormat
}

func (e *StaticRepoFormatError) Code() deperrors.Code {
	return deperrors.ErrCodeStaticRepoFormat
}
