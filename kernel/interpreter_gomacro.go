package kernel

import (
	"fmt"
	"io"

	"github.com/cosmos72/gomacro/fast"
)

// GomacroInterpreter is the default Interpreter binding, wrapping the
// embeddable Go interpreter the teacher repo already depends on. Each
// Kernel owns exactly one of these for its lifetime; it is the mutable
// namespace that persists between execute_request calls.
type GomacroInterpreter struct {
	ir *fast.Interp

	savedStdin  io.Reader
	savedStdout io.Writer
	savedStderr io.Writer
}

// NewGomacroInterpreter constructs an interpreter with a fresh global
// scope.
func NewGomacroInterpreter() *GomacroInterpreter {
	ir := fast.New()
	return &GomacroInterpreter{ir: ir}
}

type gomacroStatement struct {
	ir     *fast.Interp
	source string
}

// CompileStatement defers to gomacro's own Eval, which both compiles
// and runs in a single call; gomacro does not expose a separate
// compile-then-run step the way the original Python implementation's
// compile(..., "single") does, so Statement.Eval folds both steps
// together here. The synthetic filename is recorded for traceback
// formatting even though gomacro does not accept it directly.
func (g *GomacroInterpreter) CompileStatement(source, filename string) (Statement, error) {
	return &gomacroStatement{ir: g.ir, source: source}, nil
}

func (s *gomacroStatement) Eval() (values []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()
	results := s.ir.Eval(s.source)
	out := make([]interface{}, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CompleteWords has no gomacro-backed implementation yet; it returns
// no candidates, matching spec.md §4.5's "may return status: ok with
// empty payloads" allowance rather than the teacher's hard error.
func (g *GomacroInterpreter) CompleteWords(code string, cursorPos int) (string, []string, string) {
	return "", nil, ""
}

func (g *GomacroInterpreter) SetIO(stdin io.Reader, stdout, stderr io.Writer) {
	g.savedStdin, g.savedStdout, g.savedStderr = g.ir.Comp.Stdin, g.ir.Comp.Stdout, g.ir.Comp.Stderr
	g.ir.Comp.Stdin = stdin
	g.ir.Comp.Stdout = stdout
	g.ir.Comp.Stderr = stderr
}

func (g *GomacroInterpreter) RestoreIO() {
	g.ir.Comp.Stdin = g.savedStdin
	g.ir.Comp.Stdout = g.savedStdout
	g.ir.Comp.Stderr = g.savedStderr
}

// SyncLocalsToGlobals is a no-op for gomacro: its Eval already mutates
// the shared top-level scope directly, so there is no separate
// locals-to-globals fold to perform. The method exists so the executor
// can call it unconditionally regardless of which Interpreter is
// bound, per the original implementation's explicit fold step.
func (g *GomacroInterpreter) SyncLocalsToGlobals() {}
