package apk

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// maxMemberSize bounds how much of a single tar member is read into memory.
const maxMemberSize = 256 << 20

// findMember decompresses data as a (possibly multistream) gzip tar archive and
// returns the contents of the first member accepted by match. found is false
// when the archive ends without a match.
func findMember(data []byte, match func(name string) bool) (body []byte, found bool, err error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, &ArchiveReadError{Op: "gzip", Err: err}
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, &ArchiveReadError{Op: "tar", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !match(hdr.Name) {
			continue
		}
		body, err := io.ReadAll(io.LimitReader(tr, maxMemberSize+1))
		if err != nil {
			return nil, false, &ArchiveReadError{Op: "read " + hdr.Name, Err: err}
		}
		if len(body) > maxMemberSize {
			return nil, false, &ArchiveReadError{
				Op:  "read " + hdr.Name,
				Err: fmt.Errorf("member exceeds %d bytes", maxMemberSize),
			}
		}
		return body, true, nil
	}
}
