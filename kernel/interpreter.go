package kernel

import (
	"io"
)

// Interpreter is the embedded-language seam spec.md §9 calls out as
// the one piece left pluggable rather than hard-wired to a single
// language runtime. The default binding (interpreter_gomacro.go) uses
// gomacro, the teacher's actual dependency; the interface is kept
// narrow enough that a different embeddable interpreter could stand
// in without touching any other package.
type Interpreter interface {
	// CompileStatement compiles a single top-level statement in
	// isolation, under a synthetic filename, without evaluating it.
	// Returning a non-nil Statement defers execution to Statement.Eval.
	CompileStatement(source, filename string) (Statement, error)

	// CompleteWords returns completion candidates for code up to
	// cursorPos.
	CompleteWords(code string, cursorPos int) (prefix string, completions []string, tail string)

	// SetIO redirects the interpreter's stdin/stdout/stderr for the
	// duration of a run; RestoreIO undoes it.
	SetIO(stdin io.Reader, stdout, stderr io.Writer)
	RestoreIO()

	// SyncLocalsToGlobals folds any bindings introduced by the last
	// compiled statement into the interpreter's persistent global
	// scope, the Go analogue of the original implementation's
	// "pitfall of scripted execution" fold step.
	SyncLocalsToGlobals()
}

// Statement is a single compiled top-level statement ready to run.
// Eval returns the non-nil values a displayhook would have captured
// (the last one wins when multiple statements on one line each
// produce a value).
type Statement interface {
	Eval() (values []interface{}, err error)
}
