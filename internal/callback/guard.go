package callback

import "sync/atomic"

// ProcessingGuard makes the Idle→Parsing transition idempotent against
// duplicate triggering of the same callback invocation. It is set before the
// first verification attempt, reset only on a verification or parse failure,
// and never reset after success: a succeeded transaction must not be
// resubmitted even when the entry point fires again.
type ProcessingGuard struct {
	processed atomic.Bool
}

// TryBegin flips the guard to processed and reports whether this caller won.
// A false result means another invocation is already past Idle.
func (g *ProcessingGuard) TryBegin() bool {
	return g.processed.CompareAndSwap(false, true)
}

// Reset reopens the guard so a manual retry can re-run the machine.
func (g *ProcessingGuard) Reset() {
	g.processed.Store(false)
}

// Processed reports the current guard state.
func (g *ProcessingGuard) Processed() bool {
	return g.processed.Load()
}
