package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPackageChecksumDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.bin")
	if err := os.WriteFile(path, []byte("package contents"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	a, err := PackageChecksum(path)
	if err != nil {
		t.Fatalf("PackageChecksum: %v", err)
	}
	b, err := PackageChecksum(path)
	if err != nil {
		t.Fatalf("PackageChecksum: %v", err)
	}
	if a != b {
		t.Error("PackageChecksum is not deterministic for the same file")
	}
	if len(a) != 64 {
		t.Errorf("PackageChecksum length = %d, want 64 (hex-encoded SHA-256)", len(a))
	}
}

func TestSaveAndReadChecksum(t *testing.T) {
	p := New(t.TempDir(), "wx10")
	if err := p.EnsureMetaDirs(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if p.SavedChecksum() != "" {
		t.Error("SavedChecksum non-empty before anything was saved")
	}
	if err := p.SaveChecksum("deadbeef"); err != nil {
		t.Fatalf("SaveChecksum: %v", err)
	}
	if got := p.SavedChecksum(); got != "deadbeef" {
		t.Errorf("SavedChecksum = %q, want %q", got, "deadbeef")
	}
}

func TestValid(t *testing.T) {
	root := t.TempDir()
	p := New(root, "wx11")

	if p.Valid("deadbeef") {
		t.Error("Valid true before the workenv was ever extracted")
	}

	if err := os.MkdirAll(p.Workenv(), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(p.Workenv(), "bin"), []byte("x"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if p.Valid("deadbeef") {
		t.Error("Valid true before completion marker was set")
	}

	if err := MarkExtractionComplete(p); err != nil {
		t.Fatalf("MarkExtractionComplete: %v", err)
	}
	if p.Valid("deadbeef") {
		t.Error("Valid true before the checksum was ever saved")
	}

	if err := p.SaveChecksum("deadbeef"); err != nil {
		t.Fatalf("SaveChecksum: %v", err)
	}
	if !p.Valid("deadbeef") {
		t.Error("Valid false once content, completion marker, and matching checksum are all present")
	}
	if p.Valid("different-checksum") {
		t.Error("Valid true despite a mismatched package checksum")
	}
}
