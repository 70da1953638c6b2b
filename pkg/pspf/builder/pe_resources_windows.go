//go:build windows
// +build windows

package builder

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/tc-hib/winres"
)

// Windows PE resource identifiers for embedded package data. Appending
// bytes past a Go executable's own sections works on Unix but Windows
// rejects or silently strips trailing data from some PE loaders, so on
// Windows the package is embedded as a custom RT_RCDATA resource
// instead, ported from the teacher's pe_resources.go.
const (
	peResourceType = winres.RT_RCDATA
	peResourceName = "PSPF"
	peResourceLang = 0x0409
)

// embedAsPEResource embeds the fully assembled package bytes (index +
// metadata + slots + trailer, everything after the launcher prefix)
// into exePath's resource section rather than appending them.
func embedAsPEResource(exePath string, data []byte, logger hclog.Logger) error {
	in, err := os.Open(exePath)
	if err != nil {
		return fmt.Errorf("open launcher exe: %w", err)
	}

	rs, err := winres.LoadFromEXE(in)
	if err != nil {
		logger.Debug("no existing PE resources, creating new set")
		rs = &winres.ResourceSet{}
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("close launcher exe: %w", err)
	}

	if err := rs.Set(peResourceType, winres.Name(peResourceName), peResourceLang, data); err != nil {
		return fmt.Errorf("set PSPF resource: %w", err)
	}

	in2, err := os.Open(exePath)
	if err != nil {
		return fmt.Errorf("reopen launcher exe: %w", err)
	}
	out, err := os.Create(exePath + ".tmp")
	if err != nil {
		in2.Close()
		return fmt.Errorf("create temp output exe: %w", err)
	}
	if err := rs.WriteToEXE(out, in2); err != nil {
		out.Close()
		in2.Close()
		os.Remove(exePath + ".tmp")
		return fmt.Errorf("write resources to exe: %w", err)
	}
	if err := out.Close(); err != nil {
		in2.Close()
		os.Remove(exePath + ".tmp")
		return err
	}
	if err := in2.Close(); err != nil {
		os.Remove(exePath + ".tmp")
		return err
	}

	if err := os.Rename(exePath+".tmp", exePath); err != nil {
		os.Remove(exePath + ".tmp")
		return fmt.Errorf("replace exe with resource-embedded copy: %w", err)
	}
	logger.Info("✅ embedded package as PE resource", "exe", exePath, "size", len(data))
	return nil
}

// usePEResourceEmbedding reports whether the builder should embed into
// a PE resource rather than append at EOF: only when targeting a
// Windows launcher binary.
func usePEResourceEmbedding(launcherPath string) bool {
	return hasPEMagic(launcherPath)
}
