package apk

import (
	"bufio"
	"bytes"
	"path"
	"strconv"
	"strings"
)

// MetadataMember is the name of the metadata record inside a package archive.
const MetadataMember = ".PKGINFO"

const dependPrefix = "depend = "

// PackageInfo is the parsed `.PKGINFO` record of a package archive.
type PackageInfo struct {
	Name        string   // pkgname
	Version     string   // pkgver, including the -rN release suffix
	Description string   // pkgdesc
	URL         string   // url
	Arch        string   // arch
	License     string   // license
	Origin      string   // origin (source package)
	Size        int64    // size (installed bytes)
	Depends     []string // depend, in file order; never nil
	Provides    []string // provides, in file order
}

// Filename returns the archive filename of the package (name-version.apk),
// or "" when the record has no name.
func (p *PackageInfo) Filename() string {
	if p.Name == "" {
		return ""
	}
	return QualifiedName(p.Name, p.Version)
}

// ExtractDependencies returns the declared dependencies of the package in
// data, in the order `.PKGINFO` lists them.
//
// An archive without a `.PKGINFO` member yields an empty, non-nil slice and a
// nil error. A malformed archive yields an [*ArchiveReadError].
func ExtractDependencies(data []byte) ([]string, error) {
	info, err := ReadPackageInfo(data)
	if err != nil {
		return nil, err
	}
	return info.Depends, nil
}

// ReadPackageInfo parses the `.PKGINFO` record of the package in data.
// A missing record yields an empty PackageInfo.
func ReadPackageInfo(data []byte) (*PackageInfo, error) {
	body, _, err := findMember(data, isMetadataMember)
	if err != nil {
		return nil, err
	}
	return parsePackageInfo(body), nil
}

func isMetadataMember(name string) bool {
	return path.Clean(name) == MetadataMember
}

func parsePackageInfo(body []byte) *PackageInfo {
	info := &PackageInfo{Depends: []string{}}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), maxMemberSize)
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(line, dependPrefix); ok {
			info.Depends = append(info.Depends, strings.TrimSpace(rest))
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "pkgname":
			info.Name = value
		case "pkgver":
			info.Version = value
		case "pkgdesc":
			info.Description = value
		case "url":
			info.URL = value
		case "arch":
			info.Arch = value
		case "license":
			info.License = value
		case "origin":
			info.Origin = value
		case "size":
			info.Size, _ = strconv.ParseInt(value, 10, 64)
		case "provides":
			info.Provides = append(info.Provides, value)
		}
	}
	return info
}
