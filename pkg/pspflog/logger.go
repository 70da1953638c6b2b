// Package pspflog provides the engine's structured logging wrapper around
// hclog, ported from the teacher's pkg/logging with one reconciled
// default level (the teacher has three conflicting defaults: "info" in
// its builder, "trace" in its launcher, "warn" in this package itself).
package pspflog

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultLevel is the log level used when FLAVOR_LOG_LEVEL is unset.
const DefaultLevel = "info"

// New creates an hclog.Logger with PSPF's standard settings: UTC
// timestamps, an emoji line prefix for human-readable output, and JSON
// output when FLAVOR_JSON_LOG=1.
func New(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("FLAVOR_JSON_LOG") == "1"
	if !jsonFormat {
		output = NewPrefixWriter("📦 ", output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Level returns the configured log level from FLAVOR_LOG_LEVEL, falling
// back to DefaultLevel.
func Level() string {
	if l := os.Getenv("FLAVOR_LOG_LEVEL"); l != "" {
		return l
	}
	return DefaultLevel
}
