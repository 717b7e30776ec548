package apk

import (
	"errors"
	"fmt"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

// ErrArchiveRead matches every [ArchiveReadError] with errors.Is.
var ErrArchiveRead = errors.New("archive read failed")

// ArchiveReadError reports an archive that could not be decompressed or
// untarred.
type ArchiveReadError struct {
	Op  string // Stage that failed: "gzip", "tar", or "read <member>"
	Err error
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrArchiveRead, e.Op, e.Err)
}

func (e *ArchiveReadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrArchiveRead) true for any ArchiveReadError.
func (e *ArchiveReadError) Is(target error) bool { return target == ErrArchiveRead }

// Code maps the error onto the shared error codes.
func (e *ArchiveReadError) Code() deperrors.Code { return deperrors.ErrCodeArchiveRead }
