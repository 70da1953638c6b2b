// Package pspfconfig centralizes the engine's environment-variable
// configuration surface, consolidating readers that the teacher scatters
// across launcher.go, execution_cache.go, launcher_validation.go, and
// internal/workenv/workenv.go into one place.
package pspfconfig

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// ValidationLevel selects which integrity checks are mandatory.
type ValidationLevel string

const (
	ValidationStrict   ValidationLevel = "strict"
	ValidationStandard ValidationLevel = "standard"
	ValidationRelaxed  ValidationLevel = "relaxed"
	ValidationMinimal  ValidationLevel = "minimal"
	ValidationNone     ValidationLevel = "none"

	// DefaultValidationLevel is used when FLAVOR_VALIDATION is unset.
	DefaultValidationLevel = ValidationStandard

	// DefaultLockTimeout bounds how long a launcher waits to acquire the
	// extraction lock, or for a live extractor's completion marker.
	DefaultLockTimeout = 60 * time.Second
)

// Validation returns the configured validation level from FLAVOR_VALIDATION.
func Validation() ValidationLevel {
	switch ValidationLevel(os.Getenv("FLAVOR_VALIDATION")) {
	case ValidationStrict:
		return ValidationStrict
	case ValidationRelaxed:
		return ValidationRelaxed
	case ValidationMinimal:
		return ValidationMinimal
	case ValidationNone:
		return ValidationNone
	case ValidationStandard:
		return ValidationStandard
	default:
		return DefaultValidationLevel
	}
}

// RequireSignature reports whether the current validation level treats
// signature failures as fatal.
func (v ValidationLevel) RequireSignature() bool {
	return v == ValidationStrict || v == ValidationStandard
}

// RequireSlotChecksums reports whether slot checksum mismatches are fatal.
func (v ValidationLevel) RequireSlotChecksums() bool {
	return v == ValidationStrict || v == ValidationStandard || v == ValidationRelaxed
}

// RequireCacheChecksum reports whether a cache checksum mismatch is fatal
// (strict) versus merely triggering re-extraction (standard and below).
func (v ValidationLevel) RequireCacheChecksum() bool {
	return v == ValidationStrict
}

// CacheRoot returns the root directory under which workenvs are created,
// honoring FLAVOR_CACHE and falling back to the platform-specific default
// adapted from the teacher's internal/workenv.GetCacheRoot.
func CacheRoot(goos string) string {
	if dir := os.Getenv("FLAVOR_CACHE"); dir != "" {
		return dir
	}

	switch goos {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Caches", "flavor", "workenv")
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "flavor", "cache")
		}
	default: // linux and other POSIX
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "flavor", "workenv")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".cache", "flavor", "workenv")
		}
	}

	return filepath.Join(os.TempDir(), "flavor", "workenv")
}

// DefaultCacheRoot is CacheRoot for the current runtime.GOOS.
func DefaultCacheRoot() string { return CacheRoot(runtime.GOOS) }

// LogLevel returns the configured hclog level string from
// FLAVOR_LOG_LEVEL.
func LogLevel() string {
	if l := os.Getenv("FLAVOR_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}

// ForceReExtract reports whether FLAVOR_WORKENV_CACHE is set to a falsy
// value, forcing re-extraction even on an otherwise valid cache hit.
func ForceReExtract() bool {
	v := os.Getenv("FLAVOR_WORKENV_CACHE")
	return v == "0" || v == "false" || v == "no"
}
