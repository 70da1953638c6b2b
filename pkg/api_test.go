package pkg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildPackageAndVerifyPackageRoundTrip(t *testing.T) {
	dir := t.TempDir()

	launcherPath := filepath.Join(dir, "launcher")
	if err := os.WriteFile(launcherPath, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("setup launcher stub: %v", err)
	}
	payloadPath := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(payloadPath, []byte("payload contents"), 0o644); err != nil {
		t.Fatalf("setup payload: %v", err)
	}
	manifestPath := filepath.Join(dir, "manifest.json")
	manifest := `{
		"package": {"name": "demo", "version": "1.0.0"},
		"execution": {"command": "{workenv}/payload.txt"},
		"slots": [
			{"id": "payload", "source": "` + payloadPath + `", "target": "payload.txt", "operations": "gz"}
		]
	}`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("setup manifest: %v", err)
	}

	outputPath := filepath.Join(dir, "out.pspf")
	if err := BuildPackage(manifestPath, outputPath, launcherPath); err != nil {
		t.Fatalf("BuildPackage: %v", err)
	}

	ok, err := VerifyPackage(outputPath)
	if err != nil {
		t.Fatalf("VerifyPackage: %v", err)
	}
	if !ok {
		t.Error("VerifyPackage did not pass for a freshly built package")
	}
}

func TestBuildPackageRejectsMissingManifest(t *testing.T) {
	if err := BuildPackage(filepath.Join(t.TempDir(), "missing.json"), "out.pspf", "launcher"); err == nil {
		t.Error("BuildPackage with a missing manifest returned nil error")
	}
}
