package pspflog

import (
	"bytes"
	"io"
)

// PrefixWriter wraps an io.Writer and prepends a prefix to each complete
// line, buffering partial lines until a newline arrives. Ported verbatim
// in behavior from the teacher's pkg/logging/prefix_writer.go.
type PrefixWriter struct {
	prefix string
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter creates a PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: prefix, writer: w}
}

func (pw *PrefixWriter) Write(p []byte) (int, error) {
	n := len(p)
	if _, err := pw.buffer.Write(p); err != nil {
		return 0, err
	}

	for {
		line, err := pw.buffer.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				if _, wErr := pw.buffer.Write(line); wErr != nil {
					return 0, wErr
				}
			}
			break
		}

		if _, err := pw.writer.Write([]byte(pw.prefix)); err != nil {
			return 0, err
		}
		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
	}

	return n, nil
}
