package format

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// Index is the decoded form of the fixed 8192-byte index block.
type Index struct {
	FormatVersion    uint32
	Flags            uint64
	LauncherSize     uint64
	MetadataOffset   uint64
	MetadataSize     uint64
	SlotTableOffset  uint64
	SlotCount        uint32
	IndexSelfCRC32   uint32
	Ed25519PublicKey [32]byte
	Ed25519Signature [64]byte
	Slots            []SlotDescriptor
}

// EncodeIndex packs an Index into the fixed 8192-byte on-disk block,
// including slot descriptors and the self-checksum.
func EncodeIndex(idx *Index) ([]byte, error) {
	if len(idx.Slots) > MaxSlots {
		return nil, fmt.Errorf("pspf: %d slots exceeds maximum %d", len(idx.Slots), MaxSlots)
	}

	buf := make([]byte, IndexSize)
	copy(buf[0x00:0x04], Magic)
	binary.LittleEndian.PutUint32(buf[0x04:0x08], idx.FormatVersion)
	binary.LittleEndian.PutUint64(buf[0x08:0x10], idx.Flags)
	binary.LittleEndian.PutUint64(buf[0x10:0x18], idx.LauncherSize)
	binary.LittleEndian.PutUint64(buf[0x18:0x20], idx.MetadataOffset)
	binary.LittleEndian.PutUint64(buf[0x20:0x28], idx.MetadataSize)
	binary.LittleEndian.PutUint64(buf[0x28:0x30], idx.SlotTableOffset)
	binary.LittleEndian.PutUint32(buf[0x30:0x34], uint32(len(idx.Slots)))
	// 0x34:0x38 index_self_crc32 filled in below, zero for now.
	copy(buf[0x38:0x58], idx.Ed25519PublicKey[:])
	copy(buf[0x58:0x98], idx.Ed25519Signature[:])

	for i, slot := range idx.Slots {
		off := int(idx.SlotTableOffset) + i*SlotDescriptorSize
		desc, err := EncodeSlotDescriptor(&slot)
		if err != nil {
			return nil, err
		}
		copy(buf[off:off+SlotDescriptorSize], desc)
	}

	sum := crc32.ChecksumIEEE(buf)
	binary.LittleEndian.PutUint32(buf[0x34:0x38], sum)

	return buf, nil
}

// DecodeIndex unpacks a fixed 8192-byte index block, validating magic,
// version, and self-checksum.
func DecodeIndex(buf []byte) (*Index, error) {
	if len(buf) != IndexSize {
		return nil, pspferrors.NewFormatError(fmt.Sprintf("index block must be %d bytes, got %d", IndexSize, len(buf)))
	}
	if string(buf[0x00:0x04]) != Magic {
		return nil, pspferrors.NewFormatError("bad magic")
	}

	version := binary.LittleEndian.Uint32(buf[0x04:0x08])
	if version != Version {
		return nil, pspferrors.NewFormatError(fmt.Sprintf("unsupported format version 0x%08x", version))
	}

	check := make([]byte, IndexSize)
	copy(check, buf)
	storedCRC := binary.LittleEndian.Uint32(check[0x34:0x38])
	binary.LittleEndian.PutUint32(check[0x34:0x38], 0)
	actualCRC := crc32.ChecksumIEEE(check)
	if actualCRC != storedCRC {
		return nil, pspferrors.NewFormatError("bad index self-checksum")
	}

	idx := &Index{
		FormatVersion:   version,
		Flags:           binary.LittleEndian.Uint64(buf[0x08:0x10]),
		LauncherSize:    binary.LittleEndian.Uint64(buf[0x10:0x18]),
		MetadataOffset:  binary.LittleEndian.Uint64(buf[0x18:0x20]),
		MetadataSize:    binary.LittleEndian.Uint64(buf[0x20:0x28]),
		SlotTableOffset: binary.LittleEndian.Uint64(buf[0x28:0x30]),
		SlotCount:       binary.LittleEndian.Uint32(buf[0x30:0x34]),
		IndexSelfCRC32:  storedCRC,
	}
	copy(idx.Ed25519PublicKey[:], buf[0x38:0x58])
	copy(idx.Ed25519Signature[:], buf[0x58:0x98])

	idx.Slots = make([]SlotDescriptor, 0, idx.SlotCount)
	for i := uint32(0); i < idx.SlotCount; i++ {
		off := int(idx.SlotTableOffset) + int(i)*SlotDescriptorSize
		if off+SlotDescriptorSize > IndexSize {
			return nil, pspferrors.NewFormatError("slot table overruns index block")
		}
		desc, err := DecodeSlotDescriptor(buf[off : off+SlotDescriptorSize])
		if err != nil {
			return nil, err
		}
		idx.Slots = append(idx.Slots, *desc)
	}

	return idx, nil
}
