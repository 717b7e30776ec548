package apk

import (
	"strings"
	"unicode"
)

const archiveSuffix = ".apk"

// QualifiedName returns the archive filename for name at version.
func QualifiedName(name, version string) string {
	return name + "-" + version + archiveSuffix
}

// IsQualified reports whether id is already an archive filename.
func IsQualified(id string) bool {
	return strings.HasSuffix(id, archiveSuffix)
}

// CanonicalName reduces a package identifier to its short name.
//
// Only the leading whitespace-delimited token is kept. An archive filename
// loses its .apk suffix, its -rN release and its version segment:
//
//	"busybox"                   -> "busybox"
//	"busybox-1.36.1-r29.apk"    -> "busybox"
//	"foo-1.2.3.apk"             -> "foo"
//	"so:libc.musl-x86_64.so.1"  -> "so:libc.musl-x86_64.so.1"
//
// Version constraints written into the token itself ("foo>=1.2") are kept
// verbatim; they are not interpreted.
func CanonicalName(id string) string {
	fields := strings.Fields(id)
	if len(fields) == 0 {
		return ""
	}
	tok := fields[0]

	base, ok := strings.CutSuffix(tok, archiveSuffix)
	if !ok || base == "" {
		return tok
	}
	if i := strings.LastIndexByte(base, '-'); i > 0 && isRelease(base[i+1:]) {
		base = base[:i]
	}
	if i := strings.LastIndexByte(base, '-'); i > 0 && startsWithDigit(base[i+1:]) {
		base = base[:i]
	}
	return base
}

func isRelease(s string) bool {
	if len(s) < 2 || s[0] != 'r' {
		return false
	}
	for _, r := range s[1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
