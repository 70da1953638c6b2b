package pipeline

import (
	"bytes"
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// bzip2Operation wraps the teacher's own bzip2 dependency
// (github.com/dsnet/compress/bzip2), extended here with a compressing
// writer path since the teacher only wired up decompression.
type bzip2Operation struct{}

func (bzip2Operation) Opcode() uint8   { return format.OpBzip2 }
func (bzip2Operation) Name() string    { return "bzip2" }
func (bzip2Operation) IsArchive() bool { return false }

func (bzip2Operation) Forward(data []byte, _ string, _ string) ([]byte, error) {
	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		return nil, err
	}
	if _, err := bw.Write(data); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (bzip2Operation) Reverse(data []byte, _ string) ([]byte, error) {
	br, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	defer br.Close()
	return io.ReadAll(br)
}
