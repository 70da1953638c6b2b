package pipeline

import (
	"fmt"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// ApplyChain applies an ordered opcode chain to a slot source at build
// time. If the chain starts with OP_TAR, srcDir is archived first and the
// remaining opcodes operate on the resulting tar stream; otherwise data is
// used directly. seed, when non-empty, makes archive operations
// deterministic (zeroed mtimes, lexicographic ordering).
func ApplyChain(data []byte, srcDir string, ops []uint8, seed string) (stored []byte, err error) {
	stored = data
	for _, opcode := range ops {
		op, ok := Get(opcode)
		if !ok {
			return nil, pspferrors.NewExtractionError(
				fmt.Sprintf("unknown opcode 0x%02x in chain", opcode), nil)
		}
		if op.IsArchive() {
			stored, err = op.Forward(nil, srcDir, seed)
		} else {
			stored, err = op.Forward(stored, "", seed)
		}
		if err != nil {
			return nil, fmt.Errorf("pspf: apply %s: %w", op.Name(), err)
		}
	}
	return stored, nil
}

// ReverseChain reverses an ordered opcode chain at extraction time,
// writing the final result into targetDir. The chain is reversed
// right-to-left: the last-applied operation is undone first.
func ReverseChain(stored []byte, ops []uint8, targetDir string) error {
	data := stored
	for i := len(ops) - 1; i >= 0; i-- {
		opcode := ops[i]
		op, ok := Get(opcode)
		if !ok {
			return pspferrors.NewExtractionError(
				fmt.Sprintf("unknown opcode 0x%02x in chain", opcode), nil)
		}
		if op.IsArchive() {
			if _, err := op.Reverse(data, targetDir); err != nil {
				return pspferrors.NewExtractionError(fmt.Sprintf("reverse %s", op.Name()), err)
			}
			data = nil
			continue
		}
		var err error
		data, err = op.Reverse(data, "")
		if err != nil {
			return pspferrors.NewExtractionError(fmt.Sprintf("reverse %s", op.Name()), err)
		}
	}
	if len(ops) == 0 || !Registry[ops[0]].IsArchive() {
		// Raw or compressed-only chain with no archive stage: targetDir is
		// actually a file path (the slot's extract_to target file).
		return writeFile(data, targetDir)
	}
	return nil
}
