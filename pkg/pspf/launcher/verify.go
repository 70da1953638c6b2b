package launcher

import (
	"fmt"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

// VerifyResult reports the outcome of each independent integrity check
// Verify performs, mirroring the teacher's VerifyBundleWithLogger
// (pkg/verification.go) check list.
type VerifyResult struct {
	MagicTrailerOK bool
	IndexOK        bool
	MetadataOK     bool
	SignatureOK    bool
	SlotChecksums  map[string]bool
	Errors         []string
}

// Passed reports whether every check succeeded.
func (r VerifyResult) Passed() bool {
	return len(r.Errors) == 0
}

// Verify performs a full, non-fatal integrity check of the package at
// path: magic trailer, index self-checksum, metadata decode, Ed25519
// signature, and every slot's stored checksum. It never extracts or
// executes anything. Grounded on the teacher's VerifyBundleWithLogger,
// adapted to return a structured result instead of logging-and-exiting.
func Verify(path string) (VerifyResult, error) {
	result := VerifyResult{SlotChecksums: map[string]bool{}}

	reader, err := openPackage(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("open/locate: %v", err))
		return result, err
	}
	defer reader.Close()
	result.MagicTrailerOK = true
	result.IndexOK = true

	meta, canonical, err := reader.readMetadata()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("metadata: %v", err))
		return result, nil
	}
	result.MetadataOK = true

	if reader.verifySignature(canonical) {
		result.SignatureOK = true
	} else {
		result.Errors = append(result.Errors, "signature verification failed")
	}

	for i, slotMeta := range meta.Slots {
		desc := reader.index.Slots[i]
		stored, err := reader.readAt(desc.Offset, desc.Size)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("slot %s: read failed: %v", slotMeta.Name, err))
			result.SlotChecksums[slotMeta.Name] = false
			continue
		}
		ok := format.ChecksumBytes(stored) == desc.Checksum
		result.SlotChecksums[slotMeta.Name] = ok
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("slot %s: checksum mismatch", slotMeta.Name))
		}
	}

	return result, nil
}
