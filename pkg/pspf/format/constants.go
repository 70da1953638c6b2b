// Package format implements the PSPF/2025 on-disk binary layout: the fixed
// 8192-byte index block, 64-byte slot descriptors, the packed operation
// chain codec, and the end-of-file magic trailer.
package format

const (
	// Magic is the 4-byte ASCII magic at index offset 0x00.
	Magic = "PSPF"

	// Version is the format version stamped into every index block.
	Version uint32 = 0x20250001

	// IndexSize is the fixed size in bytes of the index block.
	IndexSize = 8192

	// SlotTableOffset is the conventional offset of the slot table within
	// the index block.
	SlotTableOffset = 0x400

	// SlotDescriptorSize is the fixed size in bytes of one slot descriptor.
	SlotDescriptorSize = 64

	// MaxSlots is the number of slot descriptors that fit between
	// SlotTableOffset and IndexSize.
	MaxSlots = (IndexSize - SlotTableOffset) / SlotDescriptorSize

	// TrailerSize is the size in bytes of the end-of-file magic trailer.
	TrailerSize = 8

	// MaxOperations is the number of opcodes that fit in the packed
	// 64-bit operations field (8 bits each).
	MaxOperations = 8
)

// Trailer is the fixed byte sequence written as the last TrailerSize bytes
// of every package: the UTF-8 code points 📦🪄.
var Trailer = [TrailerSize]byte{0xF0, 0x9F, 0x93, 0xA6, 0xF0, 0x9F, 0xAA, 0x84}

// Purpose values for a slot descriptor's 1-byte purpose field.
const (
	PurposeCode uint8 = iota
	PurposeData
	PurposeConfig
	PurposeMedia
)

// Lifecycle values for a slot descriptor's 1-byte lifecycle field.
const (
	LifecycleInit uint8 = iota
	LifecycleStartup
	LifecycleRuntime
	LifecycleShutdown
	LifecycleCache
	LifecycleTemp
	LifecycleLazy
	LifecycleEager
	LifecycleDev
	LifecycleConfig
	LifecyclePlatform
)

// Platform requirement values for a slot descriptor's 1-byte platform_req
// field.
const (
	PlatformAny uint8 = iota
	PlatformLinux
	PlatformDarwin
	PlatformWindows
)

var lifecycleNames = map[uint8]string{
	LifecycleInit: "init", LifecycleStartup: "startup", LifecycleRuntime: "runtime",
	LifecycleShutdown: "shutdown", LifecycleCache: "cache", LifecycleTemp: "temp",
	LifecycleLazy: "lazy", LifecycleEager: "eager", LifecycleDev: "dev",
	LifecycleConfig: "config", LifecyclePlatform: "platform",
}

// LifecycleName returns the symbolic name of a lifecycle value.
func LifecycleName(v uint8) string {
	if n, ok := lifecycleNames[v]; ok {
		return n
	}
	return "runtime"
}

var platformNames = map[uint8]string{
	PlatformAny: "any", PlatformLinux: "linux", PlatformDarwin: "darwin", PlatformWindows: "windows",
}

// PlatformName returns the symbolic name of a platform_req value.
func PlatformName(v uint8) string {
	if n, ok := platformNames[v]; ok {
		return n
	}
	return "any"
}

// CurrentPlatform returns the PlatformAny/Linux/Darwin/Windows value for
// the platform this binary was built for.
func CurrentPlatform(goos string) uint8 {
	switch goos {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformAny
	}
}
