package launcher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// substitutePlaceholders expands {workenv}, {slot:N}, {package}, and
// {package_name} in a command or environment-variable template, per
// spec §6's EXEC_PAYLOAD contract. The teacher's execution.go
// substitutes {workenv}, {package_name}, and {version} but has no
// {package} placeholder at all; this adds it as the absolute path of
// the package file itself (not the workenv root), matching spec §6's
// documented example.
func substitutePlaceholders(template, workenvDir, packagePath, packageName string, slotPaths map[int]string) string {
	out := template
	for idx, path := range slotPaths {
		placeholder := fmt.Sprintf("{slot:%d}", idx)
		out = strings.ReplaceAll(out, placeholder, filepath.ToSlash(path))
	}
	out = strings.ReplaceAll(out, "{workenv}", filepath.ToSlash(workenvDir))
	out = strings.ReplaceAll(out, "{package}", filepath.ToSlash(packagePath))
	out = strings.ReplaceAll(out, "{package_name}", packageName)
	return out
}

// missingSlotPlaceholder returns the first unresolved {slot:N} reference
// still present in a substituted command, or "" if none remain.
func missingSlotPlaceholder(command string, slotCount int) string {
	for i := 0; i < slotCount; i++ {
		placeholder := fmt.Sprintf("{slot:%d}", i)
		if strings.Contains(command, placeholder) {
			return placeholder
		}
	}
	return ""
}
