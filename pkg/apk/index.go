package apk

import (
	"bufio"
	"bytes"
	"slices"
	"strings"
)

// IndexArchive is the well-known filename of a repository index.
const IndexArchive = "APKINDEX.tar.gz"

// indexMember is the suffix identifying the index member inside IndexArchive.
const indexMember = "APKINDEX"

// Index maps short package names to archive filenames.
//
// An Index is immutable once built and safe for concurrent reads.
type Index struct {
	byName     map[string]string
	byFilename map[string]string
}

// NewIndex builds an Index from a name → filename mapping.
func NewIndex(m map[string]string) *Index {
	idx := &Index{
		byName:     make(map[string]string, len(m)),
		byFilename: make(map[string]string, len(m)),
	}
	for name, file := range m {
		idx.byName[name] = file
		idx.byFilename[file] = name
	}
	return idx
}

// ParseIndex builds an Index from the bytes of APKINDEX.tar.gz.
// Missing or unreadable input yields an empty Index; use [ParseIndexE] to see
// why.
func ParseIndex(data []byte) *Index {
	idx, _ := ParseIndexE(data)
	return idx
}

// ParseIndexE is [ParseIndex] that also reports the read error. The returned
// Index is never nil.
func ParseIndexE(data []byte) (*Index, error) {
	if len(data) == 0 {
		return NewIndex(nil), nil
	}
	body, _, err := findMember(data, func(name string) bool {
		return strings.HasSuffix(name, indexMember)
	})
	if err != nil {
		return NewIndex(nil), err
	}
	return parseIndexText(body), nil
}

// parseIndexText reads P:/V: pairs. A pair is committed as soon as both a
// name and a version are pending; a later block for the same name wins.
// Blank lines end a block and drop an incomplete pair.
func parseIndexText(body []byte) *Index {
	idx := NewIndex(nil)

	var name, version string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), maxMemberSize)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case line == "":
			name, version = "", ""
			continue
		case strings.HasPrefix(line, "P:"):
			name = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "V:"):
			version = strings.TrimSpace(line[2:])
		default:
			continue
		}
		if name != "" && version != "" {
			idx.add(name, QualifiedName(name, version))
			name, version = "", ""
		}
	}
	return idx
}

func (idx *Index) add(name, file string) {
	if old, ok := idx.byName[name]; ok {
		delete(idx.byFilename, old)
	}
	idx.byName[name] = file
	idx.byFilename[file] = name
}

// Resolve returns the archive filename for a short name.
func (idx *Index) Resolve(name string) (string, bool) {
	file, ok := idx.byName[name]
	return file, ok
}

// Base returns the short name for an archive filename listed in the index.
func (idx *Index) Base(filename string) (string, bool) {
	name, ok := idx.byFilename[filename]
	return name, ok
}

// Len returns the number of packages in the index.
func (idx *Index) Len() int { return len(idx.byName) }

// Names returns all short names, sorted.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.byName))
	for n := range idx.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
