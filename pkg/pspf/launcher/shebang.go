package launcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// fixShebangs rewrites interpreter paths in extracted scripts so they
// reference the final content directory instead of the scratch
// extraction path, per spec §4.5 step 4. Ported from the teacher's
// execution_utils.go fixShebangs.
func fixShebangs(binDir, oldPrefix, newPrefix string, logger hclog.Logger) error {
	entries, err := os.ReadDir(binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		scriptPath := filepath.Join(binDir, entry.Name())

		content, err := os.ReadFile(scriptPath)
		if err != nil || len(content) < 2 || content[0] != '#' || content[1] != '!' {
			continue
		}

		lines := strings.SplitN(string(content), "\n", 2)
		firstLine := lines[0]
		if !strings.Contains(firstLine, oldPrefix) {
			continue
		}

		newFirstLine := strings.ReplaceAll(firstLine, oldPrefix, newPrefix)
		newContent := newFirstLine + "\n"
		if len(lines) > 1 {
			newContent = newFirstLine + "\n" + lines[1]
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if err := os.WriteFile(scriptPath, []byte(newContent), info.Mode().Perm()); err != nil {
			logger.Debug("failed to fix shebang", "script", entry.Name(), "error", err)
		}
	}
	return nil
}
