package format

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// SlotDescriptor is the decoded form of a 64-byte slot table entry.
type SlotDescriptor struct {
	ID           uint64
	NameHash     uint64
	Offset       uint64
	Size         uint64
	OriginalSize uint64
	Operations   uint64
	Checksum     uint64
	Purpose      uint8
	Lifecycle    uint8
	Priority     uint8
	PlatformReq  uint8
	Permissions  uint16
}

// HashName returns the first 8 bytes of SHA-256(name) as a little-endian
// uint64, used for the slot name_hash field (ChecksumBytes fills the
// stored-bytes checksum field).
func HashName(name string) uint64 {
	sum := sha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint64(sum[:8])
}

// ChecksumBytes returns the first 8 bytes of SHA-256(data) as a
// little-endian uint64.
func ChecksumBytes(data []byte) uint64 {
	sum := sha256.Sum256(data)
	return binary.LittleEndian.Uint64(sum[:8])
}

// EncodeSlotDescriptor packs a SlotDescriptor into its fixed 64-byte form.
func EncodeSlotDescriptor(d *SlotDescriptor) ([]byte, error) {
	buf := make([]byte, SlotDescriptorSize)
	binary.LittleEndian.PutUint64(buf[0x00:0x08], d.ID)
	binary.LittleEndian.PutUint64(buf[0x08:0x10], d.NameHash)
	binary.LittleEndian.PutUint64(buf[0x10:0x18], d.Offset)
	binary.LittleEndian.PutUint64(buf[0x18:0x20], d.Size)
	binary.LittleEndian.PutUint64(buf[0x20:0x28], d.OriginalSize)
	binary.LittleEndian.PutUint64(buf[0x28:0x30], d.Operations)
	binary.LittleEndian.PutUint64(buf[0x30:0x38], d.Checksum)
	buf[0x38] = d.Purpose
	buf[0x39] = d.Lifecycle
	buf[0x3A] = d.Priority
	buf[0x3B] = d.PlatformReq
	// 0x3C:0x3E reserved, zero.
	binary.LittleEndian.PutUint16(buf[0x3E:0x40], d.Permissions)
	return buf, nil
}

// DecodeSlotDescriptor unpacks a fixed 64-byte slot table entry.
func DecodeSlotDescriptor(buf []byte) (*SlotDescriptor, error) {
	if len(buf) != SlotDescriptorSize {
		return nil, fmt.Errorf("pspf: slot descriptor must be %d bytes, got %d", SlotDescriptorSize, len(buf))
	}
	return &SlotDescriptor{
		ID:           binary.LittleEndian.Uint64(buf[0x00:0x08]),
		NameHash:     binary.LittleEndian.Uint64(buf[0x08:0x10]),
		Offset:       binary.LittleEndian.Uint64(buf[0x10:0x18]),
		Size:         binary.LittleEndian.Uint64(buf[0x18:0x20]),
		OriginalSize: binary.LittleEndian.Uint64(buf[0x20:0x28]),
		Operations:   binary.LittleEndian.Uint64(buf[0x28:0x30]),
		Checksum:     binary.LittleEndian.Uint64(buf[0x30:0x38]),
		Purpose:      buf[0x38],
		Lifecycle:    buf[0x39],
		Priority:     buf[0x3A],
		PlatformReq:  buf[0x3B],
		Permissions:  binary.LittleEndian.Uint16(buf[0x3E:0x40]),
	}, nil
}
