//go:build windows
// +build windows

package launcher

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	peResourceName = "PSPF"
)

// readPEResource reads the package payload (index + metadata + slots +
// trailer, everything the builder would otherwise append after the
// launcher) from exePath's own RT_RCDATA resource section, for launcher
// binaries built with PE resource embedding instead of EOF append.
// Ported from the teacher's ReadPSPFFromResource.
func readPEResource(exePath string) ([]byte, bool) {
	handle, err := windows.LoadLibraryEx(exePath, 0, windows.LOAD_LIBRARY_AS_DATAFILE)
	if err != nil {
		return nil, false
	}
	defer windows.FreeLibrary(handle)

	resInfo, err := windows.FindResource(handle, windows.StringToUTF16Ptr(peResourceName), windows.RT_RCDATA)
	if err != nil {
		return nil, false
	}

	resData, err := windows.LoadResource(handle, resInfo)
	if err != nil {
		return nil, false
	}
	size, err := windows.SizeofResource(handle, resInfo)
	if err != nil || size == 0 {
		return nil, false
	}
	ptr, err := windows.LockResource(resData)
	if err != nil || ptr == 0 {
		return nil, false
	}

	src := (*[1 << 30]byte)(unsafe.Pointer(ptr))[:size:size]
	data := make([]byte, size)
	copy(data, src)
	return data, true
}
