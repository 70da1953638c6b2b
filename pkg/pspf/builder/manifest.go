package builder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/provide-io/pspf/pkg/pspf/format"
	"github.com/provide-io/pspf/pkg/utils/permissions"
)

// manifestDocument is the on-disk JSON manifest schema a caller hands
// to the builder CLI, mirroring the teacher's BuildOptions/Slot JSON
// shape (builder_types.go) field-for-field so existing manifests need
// no migration.
type manifestDocument struct {
	Package   manifestPackage   `json:"package"`
	Execution manifestExecution `json:"execution"`
	Slots     []manifestSlot    `json:"slots"`
}

type manifestPackage struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	License     string `json:"license,omitempty"`
}

type manifestExecution struct {
	Command     string            `json:"command"`
	Environment map[string]string `json:"environment,omitempty"`
}

type manifestSlot struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Purpose     string `json:"purpose"`
	Lifecycle   string `json:"lifecycle"`
	PlatformReq string `json:"platform_req,omitempty"`
	Operations  string `json:"operations"`
	Permissions string `json:"permissions,omitempty"`
}

// ParseManifest loads a JSON manifest file and converts it to an
// Options value, leaving LauncherPath, key material, and OutputPath for
// the caller to fill in.
func ParseManifest(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var doc manifestDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Options{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	slots := make([]SlotConfig, len(doc.Slots))
	for i, s := range doc.Slots {
		perms, err := permissions.ParseOctalString(s.Permissions)
		if err != nil {
			return Options{}, fmt.Errorf("slot %s: %w", s.ID, err)
		}
		slots[i] = SlotConfig{
			ID:          s.ID,
			Source:      s.Source,
			Target:      s.Target,
			Purpose:     purposeFromName(s.Purpose),
			Lifecycle:   lifecycleFromName(s.Lifecycle),
			PlatformReq: platformFromName(s.PlatformReq),
			Operations:  s.Operations,
			Permissions: perms,
		}
	}

	return Options{
		Package: PackageConfig{
			Name:        doc.Package.Name,
			Version:     doc.Package.Version,
			Description: doc.Package.Description,
			Author:      doc.Package.Author,
			License:     doc.Package.License,
		},
		Execution: ExecutionConfig{
			Command:     doc.Execution.Command,
			Environment: doc.Execution.Environment,
		},
		Slots: slots,
	}, nil
}

func purposeFromName(name string) uint8 {
	switch name {
	case "data":
		return format.PurposeData
	case "config":
		return format.PurposeConfig
	case "media":
		return format.PurposeMedia
	default:
		return format.PurposeCode
	}
}

var lifecycleFromNameTable = map[string]uint8{
	"init": format.LifecycleInit, "startup": format.LifecycleStartup,
	"runtime": format.LifecycleRuntime, "shutdown": format.LifecycleShutdown,
	"cache": format.LifecycleCache, "temp": format.LifecycleTemp,
	"lazy": format.LifecycleLazy, "eager": format.LifecycleEager,
	"dev": format.LifecycleDev, "config": format.LifecycleConfig,
	"platform": format.LifecyclePlatform,
}

func lifecycleFromName(name string) uint8 {
	if v, ok := lifecycleFromNameTable[name]; ok {
		return v
	}
	return format.LifecycleRuntime
}

func platformFromName(name string) uint8 {
	switch name {
	case "linux":
		return format.PlatformLinux
	case "darwin":
		return format.PlatformDarwin
	case "windows":
		return format.PlatformWindows
	default:
		return format.PlatformAny
	}
}
