package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/provide-io/pspf/pkg/pspf/format"
)

func TestApplyReverseChainByteOps(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility: " +
		"the quick brown fox jumps over the lazy dog")

	for _, opcode := range []uint8{format.OpGzip, format.OpBzip2, format.OpXz, format.OpZstd} {
		op, _ := Get(opcode)
		t.Run(op.Name(), func(t *testing.T) {
			stored, err := ApplyChain(original, "", []uint8{opcode}, "")
			if err != nil {
				t.Fatalf("ApplyChain: %v", err)
			}

			targetFile := filepath.Join(t.TempDir(), "out.bin")
			if err := ReverseChain(stored, []uint8{opcode}, targetFile); err != nil {
				t.Fatalf("ReverseChain: %v", err)
			}

			got, err := os.ReadFile(targetFile)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if string(got) != string(original) {
				t.Errorf("round trip mismatch for %s: got %q, want %q", op.Name(), got, original)
			}
		})
	}
}

func TestApplyReverseChainTarGzip(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(srcDir, "nested"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "top.txt"), []byte("top level"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "nested", "inner.txt"), []byte("nested file"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ops := []uint8{format.OpTar, format.OpGzip}
	stored, err := ApplyChain(nil, srcDir, ops, "deterministic-seed")
	if err != nil {
		t.Fatalf("ApplyChain: %v", err)
	}

	targetDir := t.TempDir()
	if err := ReverseChain(stored, ops, targetDir); err != nil {
		t.Fatalf("ReverseChain: %v", err)
	}

	top, err := os.ReadFile(filepath.Join(targetDir, "top.txt"))
	if err != nil {
		t.Fatalf("read extracted top.txt: %v", err)
	}
	if string(top) != "top level" {
		t.Errorf("top.txt = %q, want %q", top, "top level")
	}

	inner, err := os.ReadFile(filepath.Join(targetDir, "nested", "inner.txt"))
	if err != nil {
		t.Fatalf("read extracted nested/inner.txt: %v", err)
	}
	if string(inner) != "nested file" {
		t.Errorf("nested/inner.txt = %q, want %q", inner, "nested file")
	}
}

func TestApplyChainUnknownOpcode(t *testing.T) {
	if _, err := ApplyChain([]byte("data"), "", []uint8{0x7F}, ""); err == nil {
		t.Error("ApplyChain accepted an unregistered opcode")
	}
}

func TestReverseChainUnknownOpcode(t *testing.T) {
	if err := ReverseChain([]byte("data"), []uint8{0x7F}, t.TempDir()); err == nil {
		t.Error("ReverseChain accepted an unregistered opcode")
	}
}

func TestTarReverseRejectsPathTraversal(t *testing.T) {
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "evil.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	stored, err := ApplyChain(nil, srcDir, []uint8{format.OpTar}, "")
	if err != nil {
		t.Fatalf("ApplyChain: %v", err)
	}

	if _, err := safeJoin(t.TempDir(), "../../etc/passwd"); err == nil {
		t.Error("safeJoin accepted a path-traversal name")
	}

	// A clean extraction of the legitimate archive must still succeed.
	if err := ReverseChain(stored, []uint8{format.OpTar}, t.TempDir()); err != nil {
		t.Errorf("ReverseChain of a legitimate archive failed: %v", err)
	}
}
