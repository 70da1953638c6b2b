// Package pkg is the engine's top-level façade: thin wrappers over
// pkg/pspf/builder and pkg/pspf/launcher for callers that want a single
// import instead of reaching into the engine's subpackages directly.
package pkg

import (
	"fmt"
	"os"

	"github.com/provide-io/pspf/pkg/pspf/builder"
	"github.com/provide-io/pspf/pkg/pspf/launcher"
	"github.com/provide-io/pspf/pkg/pspflog"
)

// BuildPackage assembles a package from a manifest using default key
// management (a fresh random keypair) and logging.
func BuildPackage(manifestPath, outputPath, launcherBin string) error {
	return BuildPackageWithOptions(manifestPath, outputPath, launcherBin, "", "", "")
}

// BuildPackageWithOptions assembles a package, optionally loading a
// private key from disk or deriving one deterministically from keySeed.
func BuildPackageWithOptions(manifestPath, outputPath, launcherBin, privateKeyPath, publicKeyPath, keySeed string) error {
	return BuildPackageWithLogLevel(manifestPath, outputPath, launcherBin, privateKeyPath, publicKeyPath, keySeed, "")
}

// BuildPackageWithLogLevel is BuildPackageWithOptions with an explicit
// log level override.
func BuildPackageWithLogLevel(manifestPath, outputPath, launcherBin, privateKeyPath, publicKeyPath, keySeed, logLevel string) error {
	opts, err := builder.ParseManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	opts.LauncherPath = launcherBin
	opts.OutputPath = outputPath
	opts.DeterministicSeed = keySeed
	if privateKeyPath != "" {
		pem, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return fmt.Errorf("read private key: %w", err)
		}
		opts.PrivateKeyPEM = pem
	}
	_ = publicKeyPath // re-derived from the private key

	logger := pspflog.New("pspf-build", logLevel, nil)
	return builder.Build(opts, logger)
}

// VerifyPackage checks a package's magic trailer, index, metadata,
// signature, and slot checksums without extracting or executing it.
func VerifyPackage(packagePath string) (bool, error) {
	result, err := launcher.Verify(packagePath)
	if err != nil {
		return false, err
	}
	return result.Passed(), nil
}

// LaunchPackage runs a package's BOOT→EXEC_PAYLOAD state machine. It
// returns (0, nil) when a spawned payload exits 0 and (1, err) on a
// launcher error; a spawned payload that exits nonzero terminates the
// process with that code, and exec-replace mode never returns.
func LaunchPackage(packagePath string, args []string) (int, error) {
	logger := pspflog.New("pspf-run", "", nil)
	if err := launcher.Run(packagePath, args, logger); err != nil {
		return 1, err
	}
	return 0, nil
}
