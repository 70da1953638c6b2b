package format

import (
	"bytes"
	"testing"
)

func mustPackOps(t *testing.T, ops ...uint8) uint64 {
	t.Helper()
	packed, err := PackOperations(ops)
	if err != nil {
		t.Fatalf("PackOperations: %v", err)
	}
	return packed
}

func sampleIndex(t *testing.T) *Index {
	idx := &Index{
		FormatVersion:   Version,
		LauncherSize:    4096,
		MetadataOffset:  4096 + IndexSize,
		MetadataSize:    256,
		SlotTableOffset: SlotTableOffset,
		Slots: []SlotDescriptor{
			{ID: 0, NameHash: HashName("bin/app"), Offset: 5000, Size: 1024, OriginalSize: 2048,
				Operations: mustPackOps(t, OpGzip), Checksum: ChecksumBytes([]byte("hello")),
				Purpose: PurposeCode, Lifecycle: LifecycleRuntime},
			{ID: 1, NameHash: HashName("lib/data.tar.gz"), Offset: 6024, Size: 2048, OriginalSize: 8192,
				Operations: mustPackOps(t, OpTar, OpGzip), Checksum: ChecksumBytes([]byte("world")),
				Purpose: PurposeData, Lifecycle: LifecycleCache},
		},
	}
	idx.Ed25519PublicKey[0] = 0xAB
	idx.Ed25519Signature[0] = 0xCD
	return idx
}

func TestEncodeDecodeIndexRoundTrip(t *testing.T) {
	idx := sampleIndex(t)

	buf, err := EncodeIndex(idx)
	if err != nil {
		t.Fatalf("EncodeIndex: %v", err)
	}
	if len(buf) != IndexSize {
		t.Fatalf("encoded index size = %d, want %d", len(buf), IndexSize)
	}
	if string(buf[0:4]) != Magic {
		t.Fatalf("missing magic in encoded index")
	}

	decoded, err := DecodeIndex(buf)
	if err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}

	if decoded.LauncherSize != idx.LauncherSize {
		t.Errorf("LauncherSize = %d, want %d", decoded.LauncherSize, idx.LauncherSize)
	}
	if decoded.MetadataOffset != idx.MetadataOffset {
		t.Errorf("MetadataOffset = %d, want %d", decoded.MetadataOffset, idx.MetadataOffset)
	}
	if len(decoded.Slots) != len(idx.Slots) {
		t.Fatalf("slot count = %d, want %d", len(decoded.Slots), len(idx.Slots))
	}
	for i := range idx.Slots {
		if decoded.Slots[i].Offset != idx.Slots[i].Offset {
			t.Errorf("slot %d Offset = %d, want %d", i, decoded.Slots[i].Offset, idx.Slots[i].Offset)
		}
		if decoded.Slots[i].Checksum != idx.Slots[i].Checksum {
			t.Errorf("slot %d Checksum mismatch", i)
		}
		if decoded.Slots[i].Operations != idx.Slots[i].Operations {
			t.Errorf("slot %d Operations = %x, want %x", i, decoded.Slots[i].Operations, idx.Slots[i].Operations)
		}
	}
	if !bytes.Equal(decoded.Ed25519PublicKey[:], idx.Ed25519PublicKey[:]) {
		t.Errorf("public key mismatch after round-trip")
	}
	if !bytes.Equal(decoded.Ed25519Signature[:], idx.Ed25519Signature[:]) {
		t.Errorf("signature mismatch after round-trip")
	}
}

func TestDecodeIndexRejectsCorruption(t *testing.T) {
	idx := sampleIndex(t)
	buf, err := EncodeIndex(idx)
	if err != nil {
		t.Fatalf("EncodeIndex: %v", err)
	}

	corrupt := append([]byte(nil), buf...)
	corrupt[100] ^= 0xFF // flip a byte inside the signature field, outside the checksum itself

	if _, err := DecodeIndex(corrupt); err == nil {
		t.Error("DecodeIndex accepted a corrupted index block")
	}
}

func TestDecodeIndexRejectsBadMagic(t *testing.T) {
	buf := make([]byte, IndexSize)
	copy(buf, "NOPE")
	if _, err := DecodeIndex(buf); err == nil {
		t.Error("DecodeIndex accepted a block with bad magic")
	}
}

func TestDecodeIndexRejectsBadVersion(t *testing.T) {
	idx := sampleIndex(t)
	idx.FormatVersion = 0x19990001
	buf, err := EncodeIndex(idx)
	if err != nil {
		t.Fatalf("EncodeIndex: %v", err)
	}
	if _, err := DecodeIndex(buf); err == nil {
		t.Error("DecodeIndex accepted an unsupported format version")
	}
}

func TestDecodeIndexRejectsWrongSize(t *testing.T) {
	if _, err := DecodeIndex(make([]byte, 100)); err == nil {
		t.Error("DecodeIndex accepted a short buffer")
	}
}

func TestEncodeIndexRejectsTooManySlots(t *testing.T) {
	idx := &Index{FormatVersion: Version, Slots: make([]SlotDescriptor, MaxSlots+1)}
	if _, err := EncodeIndex(idx); err == nil {
		t.Error("EncodeIndex accepted more than MaxSlots slot descriptors")
	}
}
