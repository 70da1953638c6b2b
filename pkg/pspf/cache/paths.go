// Package cache implements the PSPF/2025 workenv lifecycle: content-hash
// naming, PID-based extraction locking with stale-lock reclamation, and
// atomic commit of extracted content. Grounded primarily on the
// teacher's pkg/psp/format_2025/{paths,locking,execution_cache}.go and
// internal/workenv/workenv.go, reconciled per DESIGN.md.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

const (
	hiddenPrefix        = "."
	metaSuffix          = ".pspf"
	instanceDir         = "instance"
	packageDir          = "package"
	tmpDir              = "tmp"
	extractDir          = "extract"
	lockFile            = "lock"
	completeFile        = "complete"
	packageChecksumFile = "package.checksum"
	indexMetadataFile   = "index.json"
	pspMetadataFile     = "psp.json"

	// NameLength is the number of hex characters in a workenv name.
	NameLength = 16
)

// Paths resolves every path within one workenv's content directory and
// sibling hidden metadata directory.
type Paths struct {
	CacheRoot string
	Name      string
}

// WorkenvName computes the spec-mandated deterministic workenv name:
// SHA-256(package-name ":" package-version ":" package-checksum),
// truncated to NameLength hex characters. Adapted from
// internal/workenv.GetWorkenvPath's content-hash idea, generalized to
// always include all three components as the spec requires (that
// teacher function falls back to name+version only when checksum is
// empty; this implementation always has a checksum by the time a
// workenv name is needed).
func WorkenvName(packageName, version, checksum string) string {
	h := sha256.Sum256([]byte(packageName + ":" + version + ":" + checksum))
	return hex.EncodeToString(h[:])[:NameLength]
}

// New builds a Paths for the given cache root and workenv name.
func New(cacheRoot, name string) *Paths {
	return &Paths{CacheRoot: cacheRoot, Name: name}
}

// Workenv is the content directory: <cache-root>/<name>/
func (p *Paths) Workenv() string {
	return filepath.Join(p.CacheRoot, p.Name)
}

// Meta is the sibling hidden metadata directory: <cache-root>/.<name>.pspf/
func (p *Paths) Meta() string {
	return filepath.Join(p.CacheRoot, hiddenPrefix+p.Name+metaSuffix)
}

func (p *Paths) Instance() string { return filepath.Join(p.Meta(), instanceDir) }
func (p *Paths) Extract() string  { return filepath.Join(p.Instance(), extractDir) }
func (p *Paths) LockFile() string { return filepath.Join(p.Extract(), lockFile) }
func (p *Paths) CompleteFile() string {
	return filepath.Join(p.Extract(), completeFile)
}
func (p *Paths) ChecksumFile() string {
	return filepath.Join(p.Instance(), packageChecksumFile)
}
func (p *Paths) IndexMetadataFile() string {
	return filepath.Join(p.Instance(), indexMetadataFile)
}
func (p *Paths) PackageMetadataDir() string { return filepath.Join(p.Meta(), packageDir) }
func (p *Paths) PSPMetadataFile() string {
	return filepath.Join(p.PackageMetadataDir(), pspMetadataFile)
}
func (p *Paths) Tmp() string { return filepath.Join(p.Meta(), tmpDir) }
func (p *Paths) TempExtraction(pid int) string {
	return filepath.Join(p.Tmp(), fmt.Sprintf("%d", pid))
}

// EnsureMetaDirs creates every directory a fresh workenv needs before
// locking begins.
func (p *Paths) EnsureMetaDirs() error {
	for _, dir := range []string{p.Extract(), p.PackageMetadataDir(), p.Tmp()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pspf: mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// WorkenvExists reports whether the content directory exists and is
// non-empty.
func (p *Paths) WorkenvExists() bool {
	entries, err := os.ReadDir(p.Workenv())
	return err == nil && len(entries) > 0
}
