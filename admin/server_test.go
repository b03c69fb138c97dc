// The routes under test use Go 1.22 ServeMux patterns; the go:debug
// setting below selects that matcher, which go.mod's go line would
// otherwise turn off.
//
//go:debug httpmuxgo121=0

package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignition-sfc/jupyter-kernel/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(kernel.NewRegistry(), "test-kernel", "0.0.1", func() kernel.Interpreter {
		return kernel.NewGomacroInterpreter()
	})
}

func TestHeadUnknownKernelIs404(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodHead, "/kernel/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStartsEmpty(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/kernel", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kernels":[]`)
}

func TestDeleteAllOnEmptyRegistryScramsNothing(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/kernel", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scrammed":[]`)
}
