package format

import (
	"bytes"
	"io"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// LocateIndex finds and decodes the index block embedded in a package
// file without any prior knowledge of launcher_size.
//
// The spec's on-disk layout places the index immediately after an
// opaque launcher prefix of unknown length, unlike the teacher's
// combined-EOF-block layout where the index is always the last 8208
// bytes of the file and therefore trivially locatable from file size
// alone. Since launcher_size is itself a field stored inside the
// index, the launcher cannot compute the index's offset arithmetically
// before reading it.
//
// LocateIndex resolves this by scanning the file for occurrences of
// the 4-byte format magic and attempting a full decode (magic,
// version, and CRC-32 self-checksum must all agree) at each candidate
// offset. The first candidate that decodes successfully is accepted;
// a launcher binary containing the magic bytes incidentally in its own
// code will not also satisfy the version and checksum, so false
// positives are not a practical concern. Returns the decoded index and
// the absolute byte offset at which it begins (equal to launcher_size).
func LocateIndex(r io.ReaderAt, fileSize int64) (*Index, int64, error) {
	minSize := int64(IndexSize + TrailerSize)
	if fileSize < minSize {
		return nil, 0, pspferrors.NewFormatError("file too small to contain a package")
	}

	searchLimit := fileSize - int64(IndexSize)
	buf := make([]byte, fileSize)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, 0, pspferrors.NewIOError("read package for index search", err)
	}

	magic := []byte(Magic)
	from := 0
	for {
		rel := bytes.Index(buf[from:], magic)
		if rel < 0 {
			break
		}
		offset := int64(from + rel)
		if offset > searchLimit {
			break
		}
		candidate := buf[offset : offset+int64(IndexSize)]
		if idx, err := DecodeIndex(candidate); err == nil {
			return idx, offset, nil
		}
		from = int(offset) + 1
	}

	return nil, 0, pspferrors.NewFormatError("no valid index block found")
}
