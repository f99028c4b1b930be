package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

type SessionState interface {
	State() usecase.AuthState
	CurrentSession() *entity.Session
}

type gateError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequireSession só deixa passar requisições com sessão presente. Enquanto o
// estado ainda é desconhecido responde 503, sem assumir nenhum dos dois lados.
func RequireSession(gate SessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate.State() == usecase.AuthUnknown {
				writeGateError(w, http.StatusServiceUnavailable, "SESSION_UNKNOWN", "Verificando sessão, tente novamente.")
				return
			}

			session := gate.CurrentSession()
			if session == nil {
				writeGateError(w, http.StatusUnauthorized, "NO_SESSION", "Faça login para continuar.")
				return
			}

			next.ServeHTTP(w, r.WithContext(entity.ContextWithSession(r.Context(), session)))
		})
	}
}

func writeGateError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(gateError{Error: code, Message: message})
}
