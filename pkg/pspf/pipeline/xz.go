package pipeline

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// xzOperation implements OP_XZ via github.com/ulikunitz/xz, grounded in
// other_examples/manifests/{Chocapikk-pgread,grafana-tempo,
// google-osv-scalibr}/go.mod. The teacher has no xz support at all; this
// is a pure expansion to cover a defined spec opcode.
type xzOperation struct{}

func (xzOperation) Opcode() uint8   { return format.OpXz }
func (xzOperation) Name() string    { return "xz" }
func (xzOperation) IsArchive() bool { return false }

func (xzOperation) Forward(data []byte, _ string, _ string) ([]byte, error) {
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := xw.Write(data); err != nil {
		return nil, err
	}
	if err := xw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (xzOperation) Reverse(data []byte, _ string) ([]byte, error) {
	xr, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(xr)
}
