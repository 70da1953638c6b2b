//go:build !windows
// +build !windows

package builder

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// embedAsPEResource is unavailable when cross-building from a non-Windows
// host; winres's EXE writer needs platform-specific icon/version-info
// plumbing this build omits. Building Windows packages with resource
// embedding from a non-Windows host is out of scope here.
func embedAsPEResource(exePath string, data []byte, logger hclog.Logger) error {
	return fmt.Errorf("PE resource embedding requires building on Windows")
}

func usePEResourceEmbedding(launcherPath string) bool {
	return false
}
