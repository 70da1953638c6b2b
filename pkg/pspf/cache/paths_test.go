package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkenvNameDeterministic(t *testing.T) {
	a := WorkenvName("demo", "1.0.0", "deadbeef")
	b := WorkenvName("demo", "1.0.0", "deadbeef")
	if a != b {
		t.Error("WorkenvName is not deterministic for identical inputs")
	}
	if len(a) != NameLength {
		t.Errorf("WorkenvName length = %d, want %d", len(a), NameLength)
	}

	c := WorkenvName("demo", "1.0.1", "deadbeef")
	if a == c {
		t.Error("WorkenvName collided across different package versions")
	}
}

func TestPathsLayout(t *testing.T) {
	p := New("/cache", "abc123")

	wantWorkenv := filepath.Join("/cache", "abc123")
	if p.Workenv() != wantWorkenv {
		t.Errorf("Workenv() = %q, want %q", p.Workenv(), wantWorkenv)
	}

	wantMeta := filepath.Join("/cache", ".abc123.pspf")
	if p.Meta() != wantMeta {
		t.Errorf("Meta() = %q, want %q", p.Meta(), wantMeta)
	}

	if p.LockFile() != filepath.Join(p.Extract(), "lock") {
		t.Errorf("LockFile() = %q, not under Extract()", p.LockFile())
	}
	if p.CompleteFile() != filepath.Join(p.Extract(), "complete") {
		t.Errorf("CompleteFile() = %q, not under Extract()", p.CompleteFile())
	}
}

func TestEnsureMetaDirsAndWorkenvExists(t *testing.T) {
	root := t.TempDir()
	p := New(root, "wx01")

	if p.WorkenvExists() {
		t.Error("WorkenvExists true before anything was extracted")
	}

	if err := p.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs: %v", err)
	}
	for _, dir := range []string{p.Extract(), p.PackageMetadataDir(), p.Tmp()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist after EnsureMetaDirs", dir)
		}
	}
}
