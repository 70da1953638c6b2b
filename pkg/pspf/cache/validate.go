package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// PackageChecksum computes the true whole-file SHA-256 of the package at
// path, hex-encoded. The teacher's savePackageChecksum stores a 32-bit
// index checksum instead of hashing the file — a bug not carried forward
// here, since spec §4.4's CACHE_CHECK step requires re-hashing the
// entire current package file.
func PackageChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", pspferrors.NewIOError("open package for checksum", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", pspferrors.NewIOError("hash package", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveChecksum persists the package checksum to the workenv's instance
// directory.
func (p *Paths) SaveChecksum(checksum string) error {
	return os.WriteFile(p.ChecksumFile(), []byte(checksum), 0o644)
}

// SavedChecksum reads back a previously persisted package checksum, or
// "" if none has been saved.
func (p *Paths) SavedChecksum() string {
	data, err := os.ReadFile(p.ChecksumFile())
	if err != nil {
		return ""
	}
	return string(data)
}

// Valid implements the CACHE_CHECK contract of spec §4.4: a workenv is a
// valid cache hit iff the content directory exists and is non-empty, the
// completion marker is present, and the saved package checksum matches
// the current package file's checksum.
func (p *Paths) Valid(currentPackageChecksum string) bool {
	if !p.WorkenvExists() {
		return false
	}
	if !IsExtractionComplete(p) {
		return false
	}
	return p.SavedChecksum() == currentPackageChecksum
}
