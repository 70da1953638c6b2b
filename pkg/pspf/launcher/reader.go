package launcher

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"runtime"

	"github.com/provide-io/pspf/pkg/pspf/crypto"
	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/pspf/metadata"
	"github.com/provide-io/pspf/pkg/pspf/pipeline"
)

// packageReader holds everything the launcher needs from an opened
// package file, grounded on the teacher's Reader (reader.go) but built
// around the self-locating index search instead of a fixed EOF offset.
//
// On Windows, a launcher binary may carry its package payload (index +
// metadata + slots + trailer) as a PE resource instead of appended
// bytes, since Windows PE loaders are less tolerant of trailing data
// than ELF/Mach-O. When resourceData is set, all offsets recorded in
// the index (which are file-absolute, computed as if the payload were
// appended after the launcher) are translated by subtracting
// index.LauncherSize before indexing into resourceData.
type packageReader struct {
	path         string
	file         *os.File
	size         int64
	index        *format.Index
	resourceData []byte
}

func openPackage(path string) (*packageReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pspferrors.NewIOError("open package", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pspferrors.NewIOError("stat package", err)
	}

	if err := format.LocateTrailer(f); err == nil {
		idx, _, err := format.LocateIndex(f, info.Size())
		if err == nil {
			return &packageReader{path: path, file: f, size: info.Size(), index: idx}, nil
		}
	}

	if runtime.GOOS == "windows" {
		if data, ok := readPEResource(path); ok && len(data) >= int(format.IndexSize) {
			idx, err := format.DecodeIndex(data[:format.IndexSize])
			if err == nil {
				return &packageReader{path: path, file: f, size: info.Size(), index: idx, resourceData: data}, nil
			}
		}
	}

	f.Close()
	return nil, pspferrors.NewFormatError("no valid package index found (neither appended nor PE resource)")
}

func (r *packageReader) Close() error {
	return r.file.Close()
}

// readAt reads size bytes from the logical package-absolute offset,
// dispatching to the resource-backed blob when the package was embedded
// as a PE resource rather than appended to the launcher file.
func (r *packageReader) readAt(offset, size uint64) ([]byte, error) {
	if r.resourceData != nil {
		rel := offset - r.index.LauncherSize
		if rel+size > uint64(len(r.resourceData)) {
			return nil, pspferrors.NewIOError("read resource region", io.ErrUnexpectedEOF)
		}
		return r.resourceData[rel : rel+size], nil
	}
	buf := make([]byte, size)
	if _, err := r.file.ReadAt(buf, int64(offset)); err != nil {
		return nil, pspferrors.NewIOError("read package region", err)
	}
	return buf, nil
}

// readMetadata reads, ungzips, and decodes the canonical metadata
// document.
func (r *packageReader) readMetadata() (*metadata.Metadata, []byte, error) {
	gzipped, err := r.readAt(r.index.MetadataOffset, r.index.MetadataSize)
	if err != nil {
		return nil, nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(gzipped))
	if err != nil {
		return nil, nil, pspferrors.NewFormatError("metadata is not valid gzip")
	}
	defer gz.Close()

	canonical, err := io.ReadAll(gz)
	if err != nil {
		return nil, nil, pspferrors.NewFormatError("failed to decompress metadata")
	}

	meta, err := metadata.Decode(canonical)
	if err != nil {
		return nil, nil, err
	}
	return meta, canonical, nil
}

// verifySignature checks the Ed25519 signature over the canonical
// metadata bytes against the public key embedded in the index.
func (r *packageReader) verifySignature(canonical []byte) bool {
	return crypto.Verify(r.index.Ed25519PublicKey[:], canonical, r.index.Ed25519Signature)
}

// packageChecksum computes the whole-file SHA-256 of the package, the
// same quantity COMPUTE_WORKENV_ID and CACHE_CHECK key off of.
func (r *packageReader) packageChecksum() (string, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return "", pspferrors.NewIOError("seek package for checksum", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, r.file); err != nil {
		return "", pspferrors.NewIOError("hash package", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractSlot reverses one slot's operation chain into targetDir (or,
// for a non-archive chain, into a file at targetDir).
func (r *packageReader) extractSlot(slot format.SlotDescriptor, targetDir string) error {
	stored, err := r.readAt(slot.Offset, slot.Size)
	if err != nil {
		return err
	}
	if format.ChecksumBytes(stored) != slot.Checksum {
		return pspferrors.NewIntegrityError("slot checksum mismatch")
	}
	opcodes := format.UnpackOperations(slot.Operations)
	return pipeline.ReverseChain(stored, opcodes, targetDir)
}

