package metadata

import "encoding/json"

// Canonical serializes Metadata to its canonical signed form: stable key
// order (guaranteed by encoding/json's struct-field ordering, never a
// map at the top level), two-space indent, no trailing newline. This
// fixes the single canonical form the original spec leaves
// under-documented (§9 design notes).
func Canonical(m *Metadata) ([]byte, error) {
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode parses a canonical metadata document.
func Decode(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
