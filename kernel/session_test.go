package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultHistoryNegativeIndex(t *testing.T) {
	var h ResultHistory
	h.Append(ExecutionResult{Count: 1, Code: "a"})
	h.Append(ExecutionResult{Count: 2, Code: "b"})
	h.Append(ExecutionResult{Count: 3, Code: "c"})

	last, ok := h.At(-1)
	assert.True(t, ok)
	assert.Equal(t, "c", last.Code)

	first, ok := h.At(0)
	assert.True(t, ok)
	assert.Equal(t, "a", first.Code)

	_, ok = h.At(-10)
	assert.False(t, ok)
}

func TestSessionInterruptFlag(t *testing.T) {
	s := NewSession(nil)
	assert.False(t, s.Interrupted())
	s.Interrupt()
	assert.True(t, s.Interrupted())
	s.clearInterrupt()
	assert.False(t, s.Interrupted())
}
