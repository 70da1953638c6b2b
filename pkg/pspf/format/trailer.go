package format

import (
	"bytes"
	"fmt"
	"io"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// LocateTrailer reads the last TrailerSize bytes of r (which must support
// seeking) and verifies they equal the fixed trailer pattern.
func LocateTrailer(r io.ReadSeeker) error {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("pspf: seek end: %w", err)
	}
	if size < TrailerSize {
		return pspferrors.NewFormatError("file too small to contain a trailer")
	}

	buf := make([]byte, TrailerSize)
	if _, err := r.Seek(size-TrailerSize, io.SeekStart); err != nil {
		return fmt.Errorf("pspf: seek trailer: %w", err)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("pspf: read trailer: %w", err)
	}

	if !bytes.Equal(buf, Trailer[:]) {
		return pspferrors.NewFormatError("missing or corrupt magic trailer")
	}
	return nil
}
