package builder

import "os"

// hasPEMagic reports whether path begins with the "MZ" DOS header all
// PE binaries carry, used to decide whether a launcher binary needs
// resource embedding instead of EOF-append.
func hasPEMagic(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var header [2]byte
	if _, err := f.Read(header[:]); err != nil {
		return false
	}
	return header[0] == 'M' && header[1] == 'Z'
}
