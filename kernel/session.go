package kernel

import (
	"sync"
	"sync/atomic"
)

// Session is the Go rendering of original_source/execution/context.py's
// ExecutionContext: one per kernel, replaced wholesale on restart,
// holding the interpreter's persistent namespace plus the execution
// history and the cooperative-interrupt flag statements check between
// themselves.
type Session struct {
	mu          sync.Mutex
	Interp      Interpreter
	History     ResultHistory
	ExecCounter int
	interrupted atomic.Bool
}

// NewSession constructs a fresh session around an interpreter.
func NewSession(ir Interpreter) *Session {
	return &Session{Interp: ir}
}

// NextCount increments and returns the execution counter, mirroring
// the original's behavior of bumping execution_count only for
// non-silent runs.
func (s *Session) NextCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExecCounter++
	return s.ExecCounter
}

// Interrupt sets the cooperative-interrupt flag, observed at the next
// statement boundary by the executor. The flag stays set, so every
// later run on this Session stops before its first statement, until
// the Session is replaced (NewExecutionSession). This kernel does not implement
// the trace-based preemptive interrupt original_source/execution/interruption.py
// stubs out with an immediate NotImplementedError — see DESIGN.md
// Open Question decision #1.
func (s *Session) Interrupt() { s.interrupted.Store(true) }

// clearInterrupt resets the flag.
func (s *Session) clearInterrupt() { s.interrupted.Store(false) }

// Interrupted reports whether an interrupt_request has been received
// since this Session was created.
func (s *Session) Interrupted() bool { return s.interrupted.Load() }

// At addresses the session's history the way the supplemented In/Out
// sugar does (see SPEC_FULL.md §9): session.At(-1) is the most recent
// result.
func (s *Session) At(ix int) (ExecutionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.History.At(ix)
}
