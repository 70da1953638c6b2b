package pspflog

import (
	"bytes"
	"testing"
)

func TestPrefixWriterPrefixesCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter("📦 ", &buf)

	if _, err := pw.Write([]byte("first line\nsecond line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := "📦 first line\n📦 second line\n"
	if buf.String() != want {
		t.Errorf("buffer = %q, want %q", buf.String(), want)
	}
}

func TestPrefixWriterBuffersPartialLines(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter("» ", &buf)

	if _, err := pw.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("partial line was flushed before a newline arrived: %q", buf.String())
	}

	if _, err := pw.Write([]byte(" line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "» partial line\n"
	if buf.String() != want {
		t.Errorf("buffer = %q, want %q", buf.String(), want)
	}
}

func TestPrefixWriterHandlesMultipleWritesAcrossLineBoundary(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter("> ", &buf)

	chunks := []string{"a", "b\nc", "d\n"}
	for _, c := range chunks {
		if _, err := pw.Write([]byte(c)); err != nil {
			t.Fatalf("Write(%q): %v", c, err)
		}
	}
	want := "> ab\n> cd\n"
	if buf.String() != want {
		t.Errorf("buffer = %q, want %q", buf.String(), want)
	}
}
