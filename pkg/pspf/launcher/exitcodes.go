package launcher

// Process exit codes. The first block is carried over from the
// teacher's launcher_validation.go unchanged; ExitSignatureError and
// ExitLockTimeout are new, giving VERIFY_SIG failures and lock
// timeouts their own distinct codes instead of folding into the
// generic PSPF/extraction codes.
const (
	ExitPanic            = 101
	ExitPSPFError         = 102
	ExitExtractionError   = 103
	ExitExecutionError    = 104
	ExitInvalidArgs       = 105
	ExitIOError           = 106
	ExitSignatureError    = 107
	ExitLockTimeout       = 108
)
