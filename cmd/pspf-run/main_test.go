package main

import (
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"

	pspferrors "github.com/provide-io/pspf/pkg/pspf/errors"
	"github.com/provide-io/pspf/pkg/pspf/launcher"
)

func TestExitCodeForTaxonomicErrors(t *testing.T) {
	logger := hclog.NewNullLogger()
	cases := []struct {
		err  error
		want int
	}{
		{pspferrors.NewFormatError("bad magic"), launcher.ExitPSPFError},
		{pspferrors.NewSignatureError("bad signature"), launcher.ExitSignatureError},
		{pspferrors.NewLockTimeoutError("timed out"), launcher.ExitLockTimeout},
		{pspferrors.NewExtractionError("failed", nil), launcher.ExitExtractionError},
		{pspferrors.NewIntegrityError("checksum mismatch"), launcher.ExitExtractionError},
		{pspferrors.NewStaleLockError("stale"), launcher.ExitExtractionError},
		{pspferrors.NewIOError("read failed", nil), launcher.ExitIOError},
	}
	for _, tc := range cases {
		if got := exitCodeFor(tc.err, logger); got != tc.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestExitCodeForNonTaxonomicError(t *testing.T) {
	if got := exitCodeFor(fmt.Errorf("plain"), hclog.NewNullLogger()); got != launcher.ExitExecutionError {
		t.Errorf("exitCodeFor(plain error) = %d, want %d", got, launcher.ExitExecutionError)
	}
}
