package builder

import (
	"bytes"
	"compress/gzip"
)

// gzipBytes compresses the canonical metadata document for on-disk
// storage, per spec §4.3's "gzipped metadata" assembly step.
func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
