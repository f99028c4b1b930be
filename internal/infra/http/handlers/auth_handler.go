package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

// SessionService é a parte do SessionGate usada pela apresentação.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	SignOut(ctx context.Context)
	State() usecase.AuthState
	CurrentSession() *entity.Session
}

type AuthHandler struct {
	Gate        SessionService
	rateLimiter *RateLimiter
}

func NewAuthHandler(gate SessionService, limiter *RateLimiter) *AuthHandler {
	return &AuthHandler{Gate: gate, rateLimiter: limiter}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	State string `json:"state"`
	Email string `json:"email,omitempty"`
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Muitas tentativas. Aguarde um minuto.")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	if _, err := h.Gate.SignIn(r.Context(), req.Email, req.Password); err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Gate.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) sessionResponse() SessionResponse {
	resp := SessionResponse{State: string(h.Gate.State())}
	if s := h.Gate.CurrentSession(); s != nil {
		resp.Email = s.User.Email
	}
	return resp
}
