// Package launcher implements the PSPF/2025 runtime state machine:
// BOOT → LOCATE_SELF → READ_TRAILER → READ_INDEX → VERIFY_SIG →
// COMPUTE_WORKENV_ID → CACHE_CHECK → (ACQUIRE_LOCK → EXTRACT →
// ATOMIC_COMMIT →) PREPARE_ENV → EXEC_PAYLOAD → EXIT, grounded on the
// teacher's pkg/psp/format_2025/execution*.go and launcher.go.
package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/pspf/pkg/pspf/cache"
	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/pspf/metadata"
	"github.com/provide-io/pspf/pkg/pspfconfig"
	"github.com/provide-io/pspf/pkg/utils/shellparse"
)

// Run drives the full launcher state machine for the package found at
// exePath (ordinarily the launcher's own executable), forwarding args
// to the payload command. It returns an error on failure and nil when a
// spawned child exits 0; a successful exec-replace never returns, and a
// spawned child that exits nonzero terminates the process with the
// child's exit code.
func Run(exePath string, args []string, logger hclog.Logger) error {
	cwd, err := os.Getwd()
	if err != nil {
		return pspferrors.NewIOError("get working directory", err)
	}

	reader, err := openPackage(exePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	cfg := pspfconfig.Validation()

	meta, canonical, err := reader.readMetadata()
	if err != nil {
		return err
	}
	logger.Info("📦 package", "name", meta.Package.Name, "version", meta.Package.Version)

	if cfg.RequireSignature() {
		if !reader.verifySignature(canonical) {
			return pspferrors.NewSignatureError("signature verification failed")
		}
		logger.Debug("✅ signature verified")
	} else {
		logger.Warn("⚠️ signature verification skipped", "validation", cfg)
	}

	packageChecksum, err := reader.packageChecksum()
	if err != nil {
		return err
	}

	workenvName := cache.WorkenvName(meta.Package.Name, meta.Package.Version, packageChecksum)
	paths := cache.New(pspfconfig.CacheRoot(runtime.GOOS), workenvName)
	logger.Debug("🏷️ workenv", "name", workenvName, "path", paths.Workenv())

	if err := paths.EnsureMetaDirs(); err != nil {
		return err
	}

	forceReExtract := pspfconfig.ForceReExtract()
	valid := !forceReExtract && paths.Valid(packageChecksum)

	if !valid {
		if err := extract(reader, meta, paths, logger); err != nil {
			return err
		}
	} else {
		logger.Info("✅ cache hit, skipping extraction")
	}

	slotPaths := slotTargetPaths(meta, paths.Workenv())

	return prepareAndExec(meta, paths, slotPaths, exePath, cwd, args, logger)
}

// extract performs ACQUIRE_LOCK → EXTRACT → ATOMIC_COMMIT. When another
// process holds the lock, it waits once for that extraction to finish
// and then re-validates the cache; it does not retry acquiring the lock.
func extract(reader *packageReader, meta *metadata.Metadata, paths *cache.Paths, logger hclog.Logger) error {
	acquired, err := cache.TryAcquireLock(paths, logger)
	if err != nil {
		return err
	}
	if !acquired {
		logger.Info("⏳ another process is extracting, waiting")
		if err := cache.WaitForExtraction(paths, pspfconfig.DefaultLockTimeout, logger); err != nil {
			return err
		}
		if paths.Valid(paths.SavedChecksum()) {
			return nil
		}
		return pspferrors.NewExtractionError("concurrent extraction did not leave a valid cache", nil)
	}
	defer cache.ReleaseLock(paths, logger)

	pid := os.Getpid()
	scratch := paths.TempExtraction(pid)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return pspferrors.NewIOError("create scratch extraction directory", err)
	}

	for i, slotMeta := range meta.Slots {
		desc := reader.index.Slots[i]
		if desc.PlatformReq != format.PlatformAny && desc.PlatformReq != format.CurrentPlatform(runtime.GOOS) {
			logger.Info("⏭️ skipping slot for other platform", "slot", slotMeta.Name, "platform_req", slotMeta.PlatformReq)
			continue
		}
		target := slotScratchPath(scratch, slotMeta.ExtractTo)
		logger.Debug("📤 extracting slot", "slot", slotMeta.Name, "target", target)
		if err := reader.extractSlot(desc, target); err != nil {
			os.RemoveAll(scratch)
			return fmt.Errorf("extract slot %s: %w", slotMeta.Name, err)
		}
	}

	binDir := filepath.Join(scratch, "bin")
	if _, err := os.Stat(binDir); err == nil {
		if err := fixShebangs(binDir, scratch, paths.Workenv(), logger); err != nil {
			logger.Warn("⚠️ failed to fix some shebangs", "error", err)
		}
	}

	if err := cache.Commit(scratch, paths.Workenv()); err != nil {
		return err
	}

	checksum, err := reader.packageChecksum()
	if err != nil {
		return err
	}
	if err := paths.SaveChecksum(checksum); err != nil {
		logger.Debug("failed to save package checksum", "error", err)
	}
	if err := saveIndexMetadata(paths, reader.index); err != nil {
		logger.Debug("failed to save index metadata", "error", err)
	}
	if err := cache.MarkExtractionComplete(paths); err != nil {
		return err
	}
	return nil
}

// slotScratchPath maps a slot's extract_to target (which may be empty,
// meaning workenv root) onto a path under the scratch directory.
func slotScratchPath(scratch, extractTo string) string {
	if extractTo == "" || extractTo == "." || extractTo == "{workenv}" {
		return scratch
	}
	cleaned := strings.ReplaceAll(extractTo, "{workenv}", "")
	cleaned = strings.TrimPrefix(cleaned, "/")
	return filepath.Join(scratch, cleaned)
}

func slotTargetPaths(meta *metadata.Metadata, workenvDir string) map[int]string {
	paths := make(map[int]string, len(meta.Slots))
	for i, slot := range meta.Slots {
		paths[i] = slotScratchPath(workenvDir, slot.ExtractTo)
	}
	return paths
}

func saveIndexMetadata(paths *cache.Paths, idx *format.Index) error {
	summary := struct {
		FormatVersion uint32 `json:"format_version"`
		SlotCount     int    `json:"slot_count"`
	}{FormatVersion: idx.FormatVersion, SlotCount: len(idx.Slots)}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.IndexMetadataFile(), data, 0o644)
}

// prepareAndExec implements PREPARE_ENV → EXEC_PAYLOAD.
func prepareAndExec(meta *metadata.Metadata, paths *cache.Paths, slotPaths map[int]string, packagePath, cwd string, args []string, logger hclog.Logger) error {
	workenvDir := paths.Workenv()

	command := substitutePlaceholders(meta.Execution.Command, workenvDir, packagePath, meta.Package.Name, slotPaths)
	if missing := missingSlotPlaceholder(command, len(meta.Slots)); missing != "" {
		return pspferrors.NewExtractionError(fmt.Sprintf("unresolved slot reference %s", missing), nil)
	}

	parts, err := shellparse.Split(command)
	if err != nil {
		return fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return pspferrors.NewExtractionError("empty execution command", nil)
	}

	cmdArgs := append(append([]string{}, parts[1:]...), args...)
	resolved := resolveExecutable(parts[0], logger)
	cmd := exec.Command(resolved, cmdArgs...)
	cmd.Args = append([]string{filepath.Base(parts[0])}, cmdArgs...)

	env := os.Environ()
	env = setEnv(env, "FLAVOR_WORKENV", workenvDir)
	env = setEnv(env, "FLAVOR_PACKAGE", meta.Package.Name)
	env = setEnv(env, "FLAVOR_VERSION", meta.Package.Version)
	env = setEnv(env, "FLAVOR_PLATFORM", runtime.GOOS+"_"+runtime.GOARCH)
	env = setEnv(env, "FLAVOR_OS", runtime.GOOS)
	env = setEnv(env, "FLAVOR_ARCH", runtime.GOARCH)
	if originalCommand, err := os.Executable(); err == nil {
		env = setEnv(env, "FLAVOR_ORIGINAL_COMMAND", originalCommand)
	}
	env = prependPath(env, filepath.Join(workenvDir, "bin"))

	for k, v := range meta.Execution.Environment {
		v = substitutePlaceholders(v, workenvDir, packagePath, meta.Package.Name, slotPaths)
		env = setEnv(env, k, v)
	}
	cmd.Env = env
	cmd.Dir = cwd
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logEnvironmentTrace(env, logger)
	return runPayload(cmd, logger)
}
