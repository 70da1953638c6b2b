package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestFixShebangsRewritesMatchingPrefix(t *testing.T) {
	binDir := t.TempDir()
	scriptPath := filepath.Join(binDir, "run.sh")
	old := "#!/scratch/extract/abc123/bin/python3\nprint('hi')\n"
	if err := os.WriteFile(scriptPath, []byte(old), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := fixShebangs(binDir, "/scratch/extract/abc123", "/cache/workenv/abc123", hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("fixShebangs: %v", err)
	}

	got, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "#!/cache/workenv/abc123/bin/python3\nprint('hi')\n"
	if string(got) != want {
		t.Errorf("fixShebangs result = %q, want %q", got, want)
	}
}

func TestFixShebangsLeavesNonMatchingScriptsAlone(t *testing.T) {
	binDir := t.TempDir()
	scriptPath := filepath.Join(binDir, "run.sh")
	original := "#!/usr/bin/env bash\necho hi\n"
	if err := os.WriteFile(scriptPath, []byte(original), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fixShebangs(binDir, "/scratch/extract/abc123", "/cache/workenv/abc123", hclog.NewNullLogger()); err != nil {
		t.Fatalf("fixShebangs: %v", err)
	}

	got, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != original {
		t.Errorf("fixShebangs modified a script with no matching prefix: %q", got)
	}
}

func TestFixShebangsIgnoresMissingDir(t *testing.T) {
	if err := fixShebangs(filepath.Join(t.TempDir(), "does-not-exist"), "/a", "/b", hclog.NewNullLogger()); err != nil {
		t.Errorf("fixShebangs on a missing directory returned an error: %v", err)
	}
}

func TestFixShebangsSkipsNonScriptFiles(t *testing.T) {
	binDir := t.TempDir()
	binaryPath := filepath.Join(binDir, "app")
	if err := os.WriteFile(binaryPath, []byte{0x7F, 'E', 'L', 'F'}, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fixShebangs(binDir, "/a", "/b", hclog.NewNullLogger()); err != nil {
		t.Errorf("fixShebangs: %v", err)
	}
}
