package kernel

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatement struct {
	values []interface{}
	err    error
}

func (s *fakeStatement) Eval() ([]interface{}, error) { return s.values, s.err }

type fakeInterpreter struct {
	compileErr error
	byCode     map[string]*fakeStatement
	synced     int
}

func (f *fakeInterpreter) CompileStatement(source, filename string) (Statement, error) {
	if f.compileErr != nil {
		return nil, f.compileErr
	}
	if st, ok := f.byCode[source]; ok {
		return st, nil
	}
	return &fakeStatement{}, nil
}
func (f *fakeInterpreter) CompleteWords(code string, cursorPos int) (string, []string, string) {
	return "", nil, ""
}
func (f *fakeInterpreter) SetIO(stdin io.Reader, stdout, stderr io.Writer) {}
func (f *fakeInterpreter) RestoreIO()                                     {}
func (f *fakeInterpreter) SyncLocalsToGlobals()                           { f.synced++ }

func TestSplitStatementsRespectsNesting(t *testing.T) {
	code := "a := 1\nf := func() {\n  x := 2\n}\nb := 3"
	statements := SplitStatements(code)
	require.Len(t, statements, 3)
	assert.Equal(t, "a := 1", statements[0])
	assert.Contains(t, statements[1], "func()")
	assert.Equal(t, "b := 3", statements[2])
}

func TestExecutorFoldsLocalsAfterEveryStatement(t *testing.T) {
	interp := &fakeInterpreter{byCode: map[string]*fakeStatement{
		"a := 1": {},
		"a + 1":  {values: []interface{}{2}},
	}}
	session := NewSession(interp)
	executor := &Executor{Session: session}

	result := executor.Run("a := 1\na + 1", Receipt{Sockets: &SocketGroup{}}, 1)

	require.True(t, result.Ok())
	assert.Equal(t, 2, interp.synced)
	assert.Equal(t, 1, session.History.Len())
}

func TestExecutorStopsAtFirstError(t *testing.T) {
	boom := assertError("boom")
	interp := &fakeInterpreter{byCode: map[string]*fakeStatement{
		"ok":   {},
		"fail": {err: boom},
		"never": {values: []interface{}{"unreachable"}},
	}}
	session := NewSession(interp)
	executor := &Executor{Session: session}

	result := executor.Run("ok\nfail\nnever", Receipt{Sockets: &SocketGroup{}}, 1)

	require.False(t, result.Ok())
	assert.Equal(t, "boom", result.Err.Value)
}

func TestExecutorStopsOnCooperativeInterrupt(t *testing.T) {
	interp := &fakeInterpreter{}
	session := NewSession(interp)
	session.Interrupt()
	executor := &Executor{Session: session}

	result := executor.Run("a\nb", Receipt{Sockets: &SocketGroup{}}, 1)

	assert.True(t, result.Interrupted)
	assert.Nil(t, result.Err)
}

type assertError string

func (e assertError) Error() string { return string(e) }
