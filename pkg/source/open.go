package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Dima09182/depviz/pkg/cache"
	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/fetch"
)

// Mode selects how a repository location is interpreted.
type Mode string

const (
	// ModeAuto infers the mode from the location.
	ModeAuto Mode = "auto"
	// ModeFile reads a local or remote index archive; package archives sit
	// next to it.
	ModeFile Mode = "file"
	// ModeDir reads a repository directory (a local mirror or a base URL).
	ModeDir Mode = "dir"
	// ModeTest reads a static definition file.
	ModeTest Mode = "test"
)

// Modes lists the accepted modes.
func Modes() []Mode {
	return []Mode{ModeAuto, ModeFile, ModeDir, ModeTest}
}

// ParseMode validates a mode name. The empty string selects [ModeAuto].
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes() {
		if string(m) == strings.ToLower(s) {
			return m, nil
		}
	}
	return "", deperrors.New(deperrors.ErrCodeInvalidMode, "unknown mode %q (want auto, file, dir or test)", s)
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// Options configures [Open].
type Options struct {
	HTTP   fetch.HTTPOptions    // Remote fetch settings
	Cache  cache.Cache          // Shared dependency-record cache (optional)
	Logger func(string, ...any) // Warning callback (optional)
}

// Open returns the source for location under mode.
//
//   - test: location is a static definition file.
//   - dir: location is a repository directory, local or http(s).
//   - file: location is an index archive, local or http(s); package archives
//     are read from the same directory.
//   - auto: http(s) URLs are repository directories; a local directory is
//     dir; a local file named *.tar.gz or APKINDEX* is file; any other local
//     file is test.
//
// A location that does not fit the mode, or a missing local path, is an
// argument error.
func Open(ctx context.Context, location string, mode Mode, opts Options) (Source, error) {
	if err := deperrors.ValidateLocation(location); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = ModeAuto
	}
	if mode == ModeAuto {
		var err error
		if mode, err = Detect(location); err != nil {
			return nil, err
		}
	}

	switch mode {
	case ModeTest:
		if deperrors.IsRemote(location) {
			return nil, deperrors.New(deperrors.ErrCodeInvalidMode, "test mode needs a local definition file, got %q", location)
		}
		def, err := LoadDefinition(location)
		if err != nil {
			return nil, err
		}
		return NewStatic(def), nil

	case ModeDir:
		f, err := openFetcher(location, opts)
		if err != nil {
			return nil, err
		}
		return NewLive(ctx, f, liveOptions(opts, ""))

	case ModeFile:
		dir, index, err := splitIndexLocation(location)
		if err != nil {
			return nil, err
		}
		f, err := openFetcher(dir, opts)
		if err != nil {
			return nil, err
		}
		return NewLive(ctx, f, liveOptions(opts, index))
	}
	return nil, deperrors.New(deperrors.ErrCodeInvalidMode, "unknown mode %q", mode)
}

// Detect infers the mode for location.
func Detect(location string) (Mode, error) {
	if deperrors.IsRemote(location) {
		return ModeDir, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return "", deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "repository location %q", location)
	}
	if info.IsDir() {
		return ModeDir, nil
	}
	if looksLikeIndex(filepath.Base(location)) {
		return ModeFile, nil
	}
	return ModeTest, nil
}

func looksLikeIndex(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") || strings.HasPrefix(name, "APKINDEX")
}

func openFetcher(location string, opts Options) (fetch.Fetcher, error) {
	if deperrors.IsRemote(location) {
		return fetch.NewHTTP(location, opts.HTTP)
	}
	return fetch.NewDir(location)
}

func splitIndexLocation(location string) (dir, index string, err error) {
	if deperrors.IsRemote(location) {
		u, err := url.Parse(location)
		if err != nil {
			return "", "", deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "invalid index URL")
		}
		index = path.Base(u.Path)
		u.Path = path.Dir(u.Path)
		return u.String(), index, nil
	}
	info, err := os.Stat(location)
	if err != nil {
		return "", "", deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "index file %q", location)
	}
	if info.IsDir() {
		return "", "", deperrors.New(deperrors.ErrCodeInvalidLocation,
			"file mode needs an index archive, %q is a directory", location)
	}
	return filepath.Dir(location), filepath.Base(location), nil
}

func liveOptions(opts Options, index string) LiveOptions {
	return LiveOptions{IndexName: index, Cache: opts.Cache, Logger: opts.Logger}
}

// Describe returns a one-line description of src for logs.
func Describe(src Source) string {
	switch s := src.(type) {
	case *Live:
		return fmt.Sprintf("live (%s, %d packages)", s.fetcher.Location(), s.index.Len())
	case *Static:
		return fmt.Sprintf("static (%d packages)", s.def.Len())
	}
	return src.Name()
}
