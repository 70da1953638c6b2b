// Command pspf-build assembles a PSPF/2025 package from a JSON manifest
// and a launcher binary, grounded on the teacher's cmd/flavor-go-builder.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/provide-io/pspf/pkg/pspf/builder"
	"github.com/provide-io/pspf/pkg/pspflog"
)

const version = "2025.1.0"

var (
	manifestPath   string
	outputPath     string
	launcherPath   string
	privateKeyPath string
	publicKeyPath  string
	keySeed        string
	logLevel       string
	workenvBase    string
	rootCmd        *cobra.Command
	versionFlag    bool
)

func builderTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "pspf-build",
		Short: "Build PSPF/2025 packages",
		Long:  "Assemble a launcher, index, metadata, and signed slot data into a single PSPF/2025 package binary.",
		RunE:  runBuild,
	}

	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to manifest.json (required)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path for the package (required)")
	rootCmd.Flags().StringVar(&launcherPath, "launcher-bin", "", "Path to launcher binary (required)")
	rootCmd.Flags().StringVar(&privateKeyPath, "private-key", "", "Path to private signing key (PEM)")
	rootCmd.Flags().StringVar(&publicKeyPath, "public-key", "", "Path to public key (PEM, optional companion to private-key)")
	rootCmd.Flags().StringVar(&keySeed, "key-seed", "", "Seed for deterministic key generation")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&workenvBase, "workenv-base", "", "Exported as FLAVOR_WORKENV_BASE in the build process environment")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	if err := rootCmd.MarkFlagRequired("manifest"); err != nil {
		panic(err)
	}
	if err := rootCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	if err := rootCmd.MarkFlagRequired("launcher-bin"); err != nil {
		panic(err)
	}
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("pspf-build %s\n", version)
		fmt.Printf("Built: %s\n", builderTimestamp())
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	if versionFlag {
		fmt.Printf("pspf-build %s\n", version)
		fmt.Printf("Built: %s\n", builderTimestamp())
		return nil
	}

	if workenvBase != "" {
		os.Setenv("FLAVOR_WORKENV_BASE", workenvBase)
	}

	logger := pspflog.New("pspf-build", logLevel, os.Stderr)

	opts, err := builder.ParseManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	opts.LauncherPath = launcherPath
	opts.OutputPath = outputPath
	opts.DeterministicSeed = keySeed

	if privateKeyPath != "" {
		pem, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return fmt.Errorf("read private key: %w", err)
		}
		opts.PrivateKeyPEM = pem
	}
	_ = publicKeyPath // public key is re-derived from the private key; accepted for CLI parity with the teacher

	if err := builder.Build(opts, logger); err != nil {
		return fmt.Errorf("build package: %w", err)
	}
	logger.Info("✅ package built", "output", outputPath)
	return nil
}
