package kernel

import "time"

// ExecutionResult is the immutable record of one execute_request,
// grounded on original_source/execution/results.py's ExecutionResults:
// every run leaves behind exactly one of these, whether it succeeded,
// failed, or was cooperatively interrupted.
type ExecutionResult struct {
	Count     int
	Code      string
	Data      Data
	Err       *ExecutionError
	Started   time.Time
	Finished  time.Time
	Interrupted bool
}

// Ok reports whether the execution completed without error.
func (r ExecutionResult) Ok() bool { return r.Err == nil }

// ResultHistory is the ordered, append-only record of a session's
// executions, addressable both forward (by position, 0 = first) and
// backward (negative index, most recent first) the way the original
// implementation's ScopeMixin.inject_scope_history exposes In/Out.
type ResultHistory struct {
	entries []ExecutionResult
}

// Append records a new result.
func (h *ResultHistory) Append(r ExecutionResult) {
	h.entries = append(h.entries, r)
}

// At returns the result at a history index. Non-negative indices count
// from the start (0 = first execution); negative indices count from
// the end (-1 = most recent), matching the supplemented In/Out sugar
// from original_source/execution/priming.py.
func (h *ResultHistory) At(ix int) (ExecutionResult, bool) {
	n := len(h.entries)
	if ix < 0 {
		ix = n + ix
	}
	if ix < 0 || ix >= n {
		return ExecutionResult{}, false
	}
	return h.entries[ix], true
}

// Len returns the number of recorded executions.
func (h *ResultHistory) Len() int { return len(h.entries) }

// Last is a convenience for At(-1).
func (h *ResultHistory) Last() (ExecutionResult, bool) { return h.At(-1) }
