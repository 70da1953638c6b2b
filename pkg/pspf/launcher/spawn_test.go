package launcher

import (
	"runtime"
	"testing"
)

func TestExecModeHonorsSpawnEnv(t *testing.T) {
	t.Setenv("FLAVOR_EXEC_MODE", "spawn")
	if execMode() {
		t.Error("execMode() = true with FLAVOR_EXEC_MODE=spawn, want false (spawn, not replace)")
	}
}

func TestExecModeDefaultsToReplaceOnUnixLikeHosts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows always forces spawn mode")
	}
	t.Setenv("FLAVOR_EXEC_MODE", "")
	if !execMode() {
		t.Error("execMode() = false with no FLAVOR_EXEC_MODE set, want true (exec-replace default)")
	}
}

func TestExecModeIsCaseInsensitive(t *testing.T) {
	t.Setenv("FLAVOR_EXEC_MODE", "SPAWN")
	if execMode() {
		t.Error("execMode() = true with FLAVOR_EXEC_MODE=SPAWN, want false")
	}
}
