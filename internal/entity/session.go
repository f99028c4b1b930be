package entity

import (
	"context"
	"time"
)

// User é a identidade mínima que o serviço de identidade devolve.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session é opaca para o sistema além de presente/ausente; o token só é
// repassado ao armazenamento remoto.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reporta se a sessão já venceu. Zero em ExpiresAt significa sem validade.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthEvent são as mudanças de sessão emitidas pelo serviço de identidade.
type AuthEvent string

const (
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthListener recebe a sessão nova (nil quando a sessão acabou).
type AuthListener func(event AuthEvent, session *Session)

// IdentityService é o serviço externo dono das credenciais e das sessões.
type IdentityService interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	GetSession(ctx context.Context) (*Session, error)
	OnAuthStateChange(listener AuthListener) (unsubscribe func())
	SignOut(ctx context.Context) error
}

type sessionKey struct{}

// ContextWithSession anexa a sessão ao contexto para que o armazenamento
// remoto possa se autenticar em nome do usuário.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext devolve a sessão anexada, se houver.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
