package format

import "fmt"

// Opcodes for slot transform operations. Only a subset of the reserved
// opcode space is implemented by pkg/pspf/pipeline; the full space mirrors
// the layout used by the format's protobuf/binary sibling implementations
// so that unimplemented opcodes still round-trip through pack/unpack.
const (
	OpNone uint8 = 0x00

	OpTar uint8 = 0x01

	OpGzip  uint8 = 0x10
	OpBzip2 uint8 = 0x13
	OpXz    uint8 = 0x16
	OpZstd  uint8 = 0x1B
)

var opcodeNames = map[uint8]string{
	OpNone:  "raw",
	OpTar:   "tar",
	OpGzip:  "gzip",
	OpBzip2: "bzip2",
	OpXz:    "xz",
	OpZstd:  "zstd",
}

// OpcodeName returns the symbolic name of an opcode, or "unknown".
func OpcodeName(op uint8) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "unknown"
}

// PackOperations packs up to MaxOperations opcodes into a 64-bit field,
// least-significant byte first. Opcode 0x00 terminates the chain. More
// than MaxOperations opcodes is a build-time error, never truncated.
func PackOperations(ops []uint8) (uint64, error) {
	if len(ops) > MaxOperations {
		return 0, fmt.Errorf("pspf: operation chain of %d exceeds maximum %d", len(ops), MaxOperations)
	}
	var packed uint64
	for i, op := range ops {
		packed |= uint64(op) << (uint(i) * 8)
	}
	return packed, nil
}

// UnpackOperations unpacks a 64-bit packed operations field into an
// ordered opcode slice, stopping at the first OpNone sentinel.
func UnpackOperations(packed uint64) []uint8 {
	ops := make([]uint8, 0, MaxOperations)
	for i := 0; i < MaxOperations; i++ {
		op := uint8(packed >> (uint(i) * 8))
		if op == OpNone {
			break
		}
		ops = append(ops, op)
	}
	return ops
}

// OperationsToSymbolic renders a packed operations field as the metadata
// schema's symbolic form, e.g. "tar.gz", "tar.zst", "raw".
func OperationsToSymbolic(packed uint64) string {
	ops := UnpackOperations(packed)
	if len(ops) == 0 {
		return "raw"
	}
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, abbreviate(op))
	}
	s := names[0]
	for _, n := range names[1:] {
		s += "." + n
	}
	return s
}

func abbreviate(op uint8) string {
	switch op {
	case OpGzip:
		return "gz"
	case OpZstd:
		return "zst"
	case OpBzip2:
		return "bz2"
	default:
		return OpcodeName(op)
	}
}

// SymbolicToOperations parses a metadata-schema symbolic operations string
// such as "tar.gz" into its opcode chain.
func SymbolicToOperations(s string) ([]uint8, error) {
	switch s {
	case "", "raw":
		return nil, nil
	case "tar":
		return []uint8{OpTar}, nil
	case "gzip", "gz":
		return []uint8{OpGzip}, nil
	case "bzip2", "bz2":
		return []uint8{OpBzip2}, nil
	case "xz":
		return []uint8{OpXz}, nil
	case "zstd", "zst":
		return []uint8{OpZstd}, nil
	case "tar.gz", "tgz":
		return []uint8{OpTar, OpGzip}, nil
	case "tar.bz2", "tbz2":
		return []uint8{OpTar, OpBzip2}, nil
	case "tar.xz", "txz":
		return []uint8{OpTar, OpXz}, nil
	case "tar.zst", "tzst":
		return []uint8{OpTar, OpZstd}, nil
	default:
		return nil, fmt.Errorf("pspf: unknown symbolic operations %q", s)
	}
}
