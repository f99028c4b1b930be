package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/infra/http/middleware"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

type fakeGate struct {
	state   usecase.AuthState
	session *entity.Session
}

func (g fakeGate) State() usecase.AuthState        { return g.state }
func (g fakeGate) CurrentSession() *entity.Session { return g.session }

func serve(gate fakeGate) (*httptest.ResponseRecorder, *entity.Session) {
	var seen *entity.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = entity.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	middleware.RequireSession(gate)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/proposals", nil))
	return rec, seen
}

// TestRequireSessionUnknown - estado desconhecido não renderiza nada
func TestRequireSessionUnknown(t *testing.T) {
	rec, seen := serve(fakeGate{state: usecase.AuthUnknown})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_UNKNOWN")
	assert.Nil(t, seen)
}

// TestRequireSessionAbsent - sem sessão nenhuma operação de dados passa
func TestRequireSessionAbsent(t *testing.T) {
	rec, seen := serve(fakeGate{state: usecase.AuthUnauthenticated})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_SESSION")
	assert.Nil(t, seen)
}

// TestRequireSessionPresent - a sessão segue no contexto
func TestRequireSessionPresent(t *testing.T) {
	session := &entity.Session{AccessToken: "tok"}

	rec, seen := serve(fakeGate{state: usecase.AuthAuthenticated, session: session})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Same(t, session, seen)
}
