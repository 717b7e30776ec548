package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

// Dir reads repository files from a local directory.
type Dir struct {
	root    string
	maxSize int64
}

// NewDir creates a fetcher rooted at dir. The directory must exist.
func NewDir(dir string) (*Dir, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "repository directory %q", dir)
	}
	if !info.IsDir() {
		return nil, deperrors.New(deperrors.ErrCodeInvalidLocation, "%q is not a directory", dir)
	}
	return &Dir{root: dir, maxSize: DefaultMaxSize}, nil
}

// Location returns the directory path.
func (d *Dir) Location() string { return d.root }

// Fetch reads the named file relative to the directory. Names that escape
// the directory are rejected.
func (d *Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := deperrors.ValidatePath(name); err != nil {
		return nil, err
	}

	path := filepath.Join(d.root, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if info.Size() > d.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, d.maxSize)
	}
	return os.ReadFile(path)
}

var _ Fetcher = (*Dir)(nil)
