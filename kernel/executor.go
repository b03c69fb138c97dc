package kernel

import (
	"fmt"
	"io"
	"time"
)

// Executor runs one execute_request's code against a Session, the Go
// rendering of original_source/execution/run.py's Executor class:
// split the submission into top-level statements once, compile and
// evaluate each alone under a synthetic filename, fold any new
// bindings into the shared global scope after each one, stop at the
// first error (or at the first observed cooperative interrupt), and
// hand back exactly one ExecutionResult.
type Executor struct {
	Session *Session
}

// statementFilename matches the synthetic filename
// original_source/execution/run.py compiles each statement under, so
// tracebacks read the same way a notebook user would expect.
func statementFilename(execCount int) string {
	return fmt.Sprintf("<Jupyter In[%d]>", execCount)
}

// Run executes code, redirecting stdout/stderr to the receipt's IOPub
// streams (stdin is set to nil) for the run's duration and restoring
// them unconditionally afterward, matching
// original_source/execution/run.py's install/uninstall pair.
func (e *Executor) Run(code string, receipt Receipt, execCount int) ExecutionResult {
	result := ExecutionResult{Count: execCount, Code: code, Started: time.Now()}

	stdout := &streamWriter{stream: "stdout", r: receipt}
	stderr := &streamWriter{stream: "stderr", r: receipt}
	e.Session.Interp.SetIO(nil, stdout, stderr)
	defer e.Session.Interp.RestoreIO()

	cleaned, err := ApplySpecialCommands(stdout, stderr, code)
	if err != nil {
		result.Err = NewExecutionError(err)
		result.Finished = time.Now()
		e.Session.History.Append(result)
		return result
	}

	statements := SplitStatements(cleaned)
	var lastValues []interface{}

	for i, stmt := range statements {
		if e.Session.Interrupted() {
			result.Interrupted = true
			break
		}

		compiled, err := e.Session.Interp.CompileStatement(stmt, statementFilename(execCount))
		if err != nil {
			result.Err = NewExecutionError(err)
			break
		}

		values, evalErr := compiled.Eval()
		// Fold whatever the statement bound into the shared global
		// scope before deciding whether to stop, per the original
		// implementation's "pitfall of scripted execution": even a
		// statement that raises may have bound names before failing.
		e.Session.Interp.SyncLocalsToGlobals()

		if evalErr != nil {
			if e.Session.Interrupted() {
				// A cooperative interrupt observed mid-statement ends
				// the run cleanly rather than being reported as an
				// execution error.
				result.Interrupted = true
				break
			}
			result.Err = NewExecutionError(evalErr)
			break
		}
		if len(values) > 0 {
			lastValues = values
		}
	}

	if result.Err == nil && !result.Interrupted {
		result.Data = autoRenderResult(lastValues)
	}
	result.Finished = time.Now()
	e.Session.History.Append(result)
	return result
}

// SplitStatements splits a code submission into top-level statements,
// one per line group, respecting brace/paren/bracket/string nesting so
// a multi-line func literal or composite literal is not split midway.
// This is a deliberately simple rendering of "parse into statements
// once" — the original implementation has a full Python AST to lean
// on; gomacro's own Eval already tolerates whole multi-statement
// blocks, so the split here exists to give the fold-locals-into-globals
// step (and per-statement tracebacks) a real statement boundary to
// observe, not to be a general-purpose Go parser.
func SplitStatements(code string) []string {
	var statements []string
	var cur []byte
	depth := 0
	inString := false
	inRawString := false
	var stringQuote byte

	flush := func() {
		s := trimBlankLines(string(cur))
		if s != "" {
			statements = append(statements, s)
		}
		cur = cur[:0]
	}

	runes := []byte(code)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		cur = append(cur, c)

		switch {
		case inRawString:
			if c == '`' {
				inRawString = false
			}
			continue
		case inString:
			if c == '\\' && i+1 < len(runes) {
				cur = append(cur, runes[i+1])
				i++
				continue
			}
			if c == stringQuote {
				inString = false
			}
			continue
		case c == '`':
			inRawString = true
			continue
		case c == '"' || c == '\'':
			inString = true
			stringQuote = c
			continue
		case c == '(' || c == '{' || c == '[':
			depth++
			continue
		case c == ')' || c == '}' || c == ']':
			if depth > 0 {
				depth--
			}
			continue
		case c == '\n' && depth == 0:
			flush()
		}
	}
	flush()
	return statements
}

func trimBlankLines(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == '\n' || s[start] == ' ' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == '\n' || s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

var _ io.Writer = (*streamWriter)(nil)
