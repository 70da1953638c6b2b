package pipeline

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// gzipOperation wraps stdlib compress/gzip, ported directly from the
// teacher's operations/compress/gzip.go.
type gzipOperation struct{}

func (gzipOperation) Opcode() uint8   { return format.OpGzip }
func (gzipOperation) Name() string    { return "gzip" }
func (gzipOperation) IsArchive() bool { return false }

func (gzipOperation) Forward(data []byte, _ string, _ string) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gzipOperation) Reverse(data []byte, _ string) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
