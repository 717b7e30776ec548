// Package apktest builds in-memory package archives and repository indexes
// for tests.
package apktest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Member is one regular file inside a tar segment.
type Member struct {
	Name string
	Body []byte
}

// Entry is one package block of an APKINDEX.
type Entry struct {
	Name    string
	Version string
	Depends []string
}

// Filename returns the archive filename the index maps Name to.
func (e Entry) Filename() string {
	return e.Name + "-" + e.Version + ".apk"
}

// Segment returns members as a single gzip-compressed tar stream.
// When trailer is false the end-of-archive blocks are omitted, the way
// control segments are written so later segments continue the same stream.
func Segment(trailer bool, members ...Member) []byte {
	var raw bytes.Buffer
	tw := tar.NewWriter(&raw)
	for _, m := range members {
		hdr := &tar.Header{
			Name:     m.Name,
			Mode:     0o644,
			Size:     int64(len(m.Body)),
			Typeflag: tar.TypeReg,
		}
		must(tw.WriteHeader(hdr))
		_, err := tw.Write(m.Body)
		must(err)
	}
	if trailer {
		must(tw.Close())
	} else {
		must(tw.Flush())
	}

	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	_, err := zw.Write(raw.Bytes())
	must(err)
	must(zw.Close())
	return out.Bytes()
}

// PkgInfo renders a .PKGINFO record.
func PkgInfo(name, version string, depends ...string) string {
	var b strings.Builder
	b.WriteString("# Generated by abuild\n")
	fmt.Fprintf(&b, "pkgname = %s\n", name)
	fmt.Fprintf(&b, "pkgver = %s\n", version)
	b.WriteString("arch = x86_64\n")
	b.WriteString("size = 4096\n")
	for _, d := range depends {
		fmt.Fprintf(&b, "depend = %s\n", d)
	}
	return b.String()
}

// Package builds a package archive: a control segment holding pkginfo as
// .PKGINFO followed by a data segment holding files.
func Package(pkginfo string, files ...Member) []byte {
	control := Segment(false, Member{Name: ".PKGINFO", Body: []byte(pkginfo)})
	if len(files) == 0 {
		files = []Member{{Name: "usr/share/doc/README", Body: []byte("fixture\n")}}
	}
	data := Segment(true, files...)
	return append(control, data...)
}

// SimplePackage builds an archive for name-version depending on depends.
func SimplePackage(name, version string, depends ...string) []byte {
	return Package(PkgInfo(name, version, depends...))
}

// IndexText renders the APKINDEX text for entries.
func IndexText(entries ...Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("C:Q1fixture=\n")
		fmt.Fprintf(&b, "P:%s\n", e.Name)
		fmt.Fprintf(&b, "V:%s\n", e.Version)
		b.WriteString("A:x86_64\n")
		if len(e.Depends) > 0 {
			fmt.Fprintf(&b, "D:%s\n", strings.Join(e.Depends, " "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Index builds an APKINDEX.tar.gz for entries.
func Index(entries ...Entry) []byte {
	return Segment(true,
		Member{Name: "DESCRIPTION", Body: []byte("fixture repository")},
		Member{Name: "APKINDEX", Body: []byte(IndexText(entries...))},
	)
}

// Repo is an in-memory repository: its index plus one archive per entry,
// keyed by filename.
func Repo(entries ...Entry) map[string][]byte {
	files := map[string][]byte{"APKINDEX.tar.gz": Index(entries...)}
	for _, e := range entries {
		files[e.Filename()] = SimplePackage(e.Name, e.Version, e.Depends...)
	}
	return files
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("apktest: %v", err))
	}
}
