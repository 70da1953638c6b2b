package launcher

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// resolveExecutable resolves an executable name or Unix-style absolute
// path for the current platform, ported from the teacher's
// execution_resolve.go, including its Windows python3/sh fallbacks.
func resolveExecutable(executable string, logger hclog.Logger) string {
	name := executable
	if strings.HasPrefix(executable, "/") {
		name = filepath.Base(executable)
	}

	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}

	if runtime.GOOS == "windows" {
		var fallback string
		switch name {
		case "python3", "python3.exe":
			fallback = "python.exe"
		case "sh", "sh.exe":
			fallback = "bash.exe"
		}
		if fallback != "" {
			if resolved, err := exec.LookPath(fallback); err == nil {
				logger.Debug("resolved via windows fallback", "input", executable, "resolved", resolved)
				return resolved
			}
		}
	}

	if name != executable {
		return name
	}
	return executable
}
