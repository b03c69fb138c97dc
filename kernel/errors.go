package kernel

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ExecutionError is the Jupyter-shaped rendering of whatever the
// interpreter raised or panicked with, grounded on
// KevinZonda/go-jupyter's doEval panic recovery and the
// ename/evalue/traceback convention original_source/ uses throughout.
type ExecutionError struct {
	Name      string
	Value     string
	Traceback []string
}

func (e *ExecutionError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Value) }

// NewExecutionError wraps a Go error recovered from statement
// evaluation into the three Jupyter error fields.
func NewExecutionError(err error) *ExecutionError {
	return &ExecutionError{
		Name:      "ERROR",
		Value:     err.Error(),
		Traceback: []string{err.Error()},
	}
}

// CardiacArrest is raised by the supervisor's liveness watchdog when
// too long has passed since the last heartbeat, named directly after
// original_source/core.py's CardiacArrest exception. It always
// triggers teardown plus registry removal.
type CardiacArrest struct {
	KernelID string
	Since    time.Time
	Timeout  time.Duration
}

func (c *CardiacArrest) Error() string {
	return fmt.Sprintf("kernel %s: no heartbeat for %s (timeout %s)", c.KernelID, time.Since(c.Since), c.Timeout)
}

// IsTornDownError reports whether err is the kind of error a socket or
// poller produces once it has already been closed during teardown —
// the squelch side of the Open Question spec.md raises about
// ZmqErrorCatcher (see DESIGN.md decision #2): these are expected
// noise during shutdown and should not be escalated, whereas any other
// poll error must propagate and tear the kernel down.
func IsTornDownError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	return err.Error() == "context canceled" || err.Error() == "use of closed network connection"
}
