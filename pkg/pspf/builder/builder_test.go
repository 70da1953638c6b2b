package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/pspf/pkg/pspf/launcher"
)

func TestBuildProducesVerifiablePackage(t *testing.T) {
	dir := t.TempDir()

	launcherPath := filepath.Join(dir, "launcher")
	if err := os.WriteFile(launcherPath, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("setup launcher stub: %v", err)
	}

	payloadPath := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(payloadPath, []byte("payload contents"), 0o644); err != nil {
		t.Fatalf("setup payload: %v", err)
	}

	outputPath := filepath.Join(dir, "out.pspf")
	opts := Options{
		Package: PackageConfig{Name: "demo", Version: "1.0.0"},
		Execution: ExecutionConfig{
			Command: "{workenv}/payload.txt",
		},
		Slots: []SlotConfig{
			{ID: "payload", Source: payloadPath, Target: "payload.txt", Operations: "gz"},
		},
		LauncherPath:      launcherPath,
		DeterministicSeed: "test-seed",
		OutputPath:        outputPath,
	}

	if err := Build(opts, hclog.NewNullLogger()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Mode()&0o111 == 0 {
		t.Error("built package is not executable")
	}

	result, err := launcher.Verify(outputPath)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Passed() {
		t.Errorf("Verify did not pass: %+v", result.Errors)
	}
	if !result.SignatureOK {
		t.Error("Verify.SignatureOK = false")
	}
	if ok, present := result.SlotChecksums["payload"]; !present || !ok {
		t.Errorf("Verify.SlotChecksums[payload] = %v, present=%v, want true", ok, present)
	}
}

func TestBuildIsDeterministicForTheSameSeed(t *testing.T) {
	dir := t.TempDir()
	launcherPath := filepath.Join(dir, "launcher")
	if err := os.WriteFile(launcherPath, []byte("stub-launcher"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	payloadPath := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(payloadPath, []byte("same contents every time"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	buildOnce := func(outPath string) []byte {
		opts := Options{
			Package:           PackageConfig{Name: "demo", Version: "1.0.0"},
			Execution:         ExecutionConfig{Command: "{workenv}/payload.txt"},
			Slots:             []SlotConfig{{ID: "payload", Source: payloadPath, Target: "payload.txt", Operations: "raw"}},
			LauncherPath:      launcherPath,
			DeterministicSeed: "fixed-seed",
			OutputPath:        outPath,
		}
		if err := Build(opts, hclog.NewNullLogger()); err != nil {
			t.Fatalf("Build: %v", err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		return data
	}

	a := buildOnce(filepath.Join(dir, "a.pspf"))
	b := buildOnce(filepath.Join(dir, "b.pspf"))

	if string(a) != string(b) {
		t.Error("Build with the same deterministic seed produced different output bytes")
	}
}
