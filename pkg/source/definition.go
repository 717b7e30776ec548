package source

import (
	"bufio"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

// Definition is a static repository: each package and its dependency names.
type Definition struct {
	order []string
	deps  map[string][]string
}

// ParseDefinition reads a static repository definition. Each line has the form
//
//	<name>: <dep> <dep> ...
//
// An empty right-hand side declares a leaf. Blank lines, lines starting with
// '#' and lines without a colon are ignored. An empty name, invalid UTF-8 or a
// package declared twice is a [StaticRepoFormatError].
func ParseDefinition(r io.Reader) (*Definition, error) {
	def := &Definition{deps: make(map[string][]string)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !utf8.ValidString(text) {
			return nil, &StaticRepoFormatError{Line: line, Reason: "invalid UTF-8"}
		}
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, rest, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &StaticRepoFormatError{Line: line, Reason: "empty package name"}
		}
		if _, dup := def.deps[name]; dup {
			return nil, &StaticRepoFormatError{Line: line, Reason: "package " + name + " declared twice"}
		}
		def.order = append(def.order, name)
		def.deps[name] = append([]string{}, strings.Fields(rest)...)
	}
	if err := sc.Err(); err != nil {
		return nil, &StaticRepoFormatError{Line: line + 1, Reason: err.Error()}
	}
	return def, nil
}

// LoadDefinition reads a static repository definition from a file.
func LoadDefinition(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidLocation, err, "cannot open static repository")
	}
	defer f.Close()

	def, err := ParseDefinition(f)
	if err != nil {
		var fe *StaticRepoFormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return def, nil
}

// Packages returns the declared packages in file order.
func (d *Definition) Packages() []string {
	return slices.Clone(d.order)
}

// Dependencies returns the dependencies declared for name. The bool is false
// when name is not declared.
func (d *Definition) Dependencies(name string) ([]string, bool) {
	deps, ok := d.deps[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(deps), true
}

// Len returns the number of declared packages.
func (d *Definition) Len() int { return len(d.order) }
