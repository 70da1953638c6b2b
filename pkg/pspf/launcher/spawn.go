package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
)

// execMode decides exec-replace vs spawn-and-forward per spec §4.4,
// forcing spawn mode on Windows where syscall.Exec has no equivalent.
func execMode() bool {
	useSpawn := strings.EqualFold(os.Getenv("FLAVOR_EXEC_MODE"), "spawn")
	if runtime.GOOS == "windows" {
		useSpawn = true
	}
	return !useSpawn
}

// runPayload executes cmd either by replacing the current process image
// (POSIX exec) or by spawning a child and forwarding signals/exit code,
// grounded on the teacher's execution_spawn.go.
func runPayload(cmd *exec.Cmd, logger hclog.Logger) error {
	if execMode() {
		return execReplace(cmd, logger)
	}
	return spawnAndWait(cmd, logger)
}

func execReplace(cmd *exec.Cmd, logger hclog.Logger) error {
	binary, err := exec.LookPath(cmd.Path)
	if err != nil {
		return fmt.Errorf("resolve payload binary: %w", err)
	}

	argv := []string{binary}
	if len(cmd.Args) > 1 {
		argv = append(argv, cmd.Args[1:]...)
	}
	envv := cmd.Env
	if envv == nil {
		envv = os.Environ()
	}

	logger.Info("🚀 replacing process image", "path", binary)
	err = syscall.Exec(binary, argv, envv)
	return fmt.Errorf("exec failed: %w", err)
}

// spawnAndWait starts the payload as a child process, forwards received
// signals to it, and returns nil when it exits 0; a nonzero exit code
// terminates this process with that code.
func spawnAndWait(cmd *exec.Cmd, logger hclog.Logger) error {
	logger.Info("🚀 spawning payload", "path", cmd.Path)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh)
	defer signal.Stop(sigCh)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start payload: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigCh:
			if cmd.Process != nil {
				_ = cmd.Process.Signal(sig)
			}
		case err := <-done:
			if err == nil {
				return nil
			}
			if exitErr, ok := err.(*exec.ExitError); ok {
				os.Exit(exitErr.ExitCode())
			}
			return fmt.Errorf("payload exited abnormally: %w", err)
		}
	}
}
