// Package errors defines the PSPF/2025 error taxonomy: a single typed
// Error whose Kind field names one taxonomy row, read back with KindOf.
package errors

import "fmt"

// Kind identifies one row of the error taxonomy.
type Kind string

const (
	KindFormat      Kind = "FormatError"
	KindIntegrity   Kind = "IntegrityError"
	KindSignature   Kind = "SignatureError"
	KindLockTimeout Kind = "LockTimeout"
	KindExtraction  Kind = "ExtractionError"
	KindIO          Kind = "IoError"
	KindStaleLock   Kind = "StaleLock"
)

// Error is a taxonomic PSPF error: every failure surfaced before
// exec-replace carries one of these so the launcher can map it to a
// stable exit code and a single-line stderr message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pspf: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("pspf: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// NewFormatError builds a FormatError: bad magic, bad version, bad
// self-checksum, missing trailer. Fatal; no extraction attempted.
func NewFormatError(msg string) *Error { return newError(KindFormat, msg) }

// NewIntegrityError builds an IntegrityError: a slot checksum mismatch.
// Fatal under strict/standard, logged under relaxed, ignored under none.
func NewIntegrityError(msg string) *Error { return newError(KindIntegrity, msg) }

// NewSignatureError builds a SignatureError: Ed25519 verification failed.
// Same validation-level gating as IntegrityError.
func NewSignatureError(msg string) *Error { return newError(KindSignature, msg) }

// NewLockTimeoutError builds a LockTimeout: the extraction lock could not
// be acquired within the configured timeout. Always fatal.
func NewLockTimeoutError(msg string) *Error { return newError(KindLockTimeout, msg) }

// NewExtractionError builds an ExtractionError: an opcode failure, a
// path-traversal attempt, or an I/O error during extraction. Always
// fatal; scratch directory removed and lock released before it
// propagates.
func NewExtractionError(msg string, err error) *Error {
	return wrapError(KindExtraction, msg, err)
}

// NewIOError builds an IoError: an underlying filesystem failure. Fatal
// unless the caller determines it is transient and retries.
func NewIOError(msg string, err error) *Error { return wrapError(KindIO, msg, err) }

// NewStaleLockError builds a StaleLock: a lock file owned by a dead PID.
// Recovered automatically by the cache package; not normally surfaced to
// a caller.
func NewStaleLockError(msg string) *Error { return newError(KindStaleLock, msg) }

// KindOf returns the Kind of err if it is (or wraps) a *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if as(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// as is a tiny local errors.As to avoid importing the stdlib package name
// "errors" under this package's own name.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
