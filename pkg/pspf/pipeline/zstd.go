package pipeline

import (
	"github.com/klauspost/compress/zstd"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// zstdOperation implements OP_ZSTD via
// github.com/klauspost/compress/zstd, grounded in
// other_examples/manifests/{AKJUS-bsc-erigon,2lambda123-NVIDIA-aistore,
// Chocapikk-pgread,grafana-tempo}/go.mod. The teacher has no zstd support
// at all; this is a pure expansion to cover a defined spec opcode.
type zstdOperation struct{}

func (zstdOperation) Opcode() uint8   { return format.OpZstd }
func (zstdOperation) Name() string    { return "zstd" }
func (zstdOperation) IsArchive() bool { return false }

func (zstdOperation) Forward(data []byte, _ string, _ string) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (zstdOperation) Reverse(data []byte, _ string) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
