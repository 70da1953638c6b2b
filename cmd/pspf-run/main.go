// Command pspf-run is the PSPF/2025 launcher entrypoint: the binary
// concatenated as the launcher prefix of every built package. It always
// runs the package in its own executable (symlinks resolved) and
// forwards all of its arguments to the payload.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/launcher"
	"github.com/provide-io/pspf/pkg/pspfconfig"
	"github.com/provide-io/pspf/pkg/pspflog"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "pspf: panic: %v\n", r)
			debug.PrintStack()
			os.Exit(launcher.ExitPanic)
		}
	}()

	logger := pspflog.New("pspf-run", pspfconfig.LogLevel(), os.Stderr)

	exePath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pspf: failed to locate own executable: %v\n", err)
		os.Exit(launcher.ExitIOError)
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}

	if err := launcher.Run(exePath, os.Args[1:], logger); err != nil {
		os.Exit(exitCodeFor(err, logger))
	}
}

// exitCodeFor maps the engine's typed error taxonomy onto a process exit
// code (integrity, extraction and stale-lock errors share
// ExitExtractionError), printing a single-line taxonomic message
// to stderr before exiting.
func exitCodeFor(err error, logger hclog.Logger) int {
	kind, ok := pspferrors.KindOf(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "pspf: %v\n", err)
		return launcher.ExitExecutionError
	}
	fmt.Fprintf(os.Stderr, "pspf: %s: %v\n", kind, err)

	switch kind {
	case pspferrors.KindFormat:
		return launcher.ExitPSPFError
	case pspferrors.KindSignature:
		return launcher.ExitSignatureError
	case pspferrors.KindLockTimeout:
		return launcher.ExitLockTimeout
	case pspferrors.KindExtraction, pspferrors.KindIntegrity, pspferrors.KindStaleLock:
		return launcher.ExitExtractionError
	case pspferrors.KindIO:
		return launcher.ExitIOError
	default:
		return launcher.ExitExecutionError
	}
}
