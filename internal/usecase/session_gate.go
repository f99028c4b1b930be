package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/proposal-control/internal/entity"
)

// AuthState segue Unknown -> {Authenticated, Unauthenticated}; nunca volta a Unknown.
type AuthState string

const (
	AuthUnknown         AuthState = "unknown"
	AuthAuthenticated   AuthState = "authenticated"
	AuthUnauthenticated AuthState = "unauthenticated"
)

// StateListener é chamado fora do lock quando o estado muda ou quando outro
// usuário assume a sessão.
type StateListener func(ctx context.Context, state AuthState, session *entity.Session)

// SessionGate guarda o estado de autenticação e bloqueia as operações de
// dados enquanto não houver sessão.
type SessionGate struct {
	identity entity.IdentityService
	notifier Notifier
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.RWMutex
	state       AuthState
	session     *entity.Session
	listeners   []StateListener
	unsubscribe func()
}

func NewSessionGate(identity entity.IdentityService, notifier Notifier, recorder Recorder, logger *slog.Logger) *SessionGate {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionGate{
		identity: identity,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		state:    AuthUnknown,
	}
}

// Subscribe registra um dependente que reage às mudanças de estado.
func (g *SessionGate) Subscribe(listener StateListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, listener)
}

// Start assina as mudanças externas de sessão e resolve o estado inicial.
func (g *SessionGate) Start(ctx context.Context) error {
	unsubscribe := g.identity.OnAuthStateChange(g.handleAuthEvent)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	session, err := g.identity.GetSession(ctx)
	if err != nil {
		g.logger.Warn("não foi possível recuperar a sessão inicial", "error", err)
		session = nil
	}

	// Um evento externo pode ter chegado antes; ele prevalece.
	if g.State() == AuthUnknown {
		g.apply(ctx, session)
	}
	return nil
}

// Stop cancela a assinatura de eventos do serviço de identidade.
func (g *SessionGate) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (g *SessionGate) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, g.rejectCredentials(ctx, email, nil)
	}

	session, err := g.identity.SignInWithPassword(ctx, email, password)
	if err != nil || session == nil {
		return nil, g.rejectCredentials(ctx, email, err)
	}

	g.apply(ctx, session)
	g.recorder.RecordAuthAttempt("success")
	g.logger.Info("login realizado", "user_id", session.User.ID)
	g.notifier.Notify(ctx, entity.NewNotification(entity.NotificationSuccess, MsgWelcome))
	return session, nil
}

// rejectCredentials mantém o estado anterior e devolve sempre o mesmo erro,
// seja senha errada ou usuário inexistente.
func (g *SessionGate) rejectCredentials(ctx context.Context, email string, cause error) error {
	g.recorder.RecordAuthAttempt("error")
	g.logger.Warn("login recusado", "email", email, "error", cause)
	g.notifier.Notify(ctx, entity.NewNotification(entity.NotificationError, MsgLoginFailed))
	return &AuthError{Code: CodeInvalidCredentials, Message: MsgLoginFailed, Err: cause}
}

// SignOut limpa o estado local antes de falar com o serviço de identidade,
// para que os registros saiam da tela imediatamente.
func (g *SessionGate) SignOut(ctx context.Context) {
	g.apply(ctx, nil)

	if err := g.identity.SignOut(ctx); err != nil {
		g.logger.Warn("falha ao encerrar sessão remota", "error", err)
	}

	g.notifier.Notify(ctx, entity.NewNotification(entity.NotificationInfo, MsgLoggedOut))
}

// CurrentSession devolve a sessão vigente ou nil se ausente/expirada.
func (g *SessionGate) CurrentSession() *entity.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.state != AuthAuthenticated || g.session.Expired(g.now()) {
		return nil
	}
	return g.session
}

func (g *SessionGate) State() AuthState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *SessionGate) handleAuthEvent(event entity.AuthEvent, session *entity.Session) {
	ctx := context.Background()

	switch event {
	case entity.AuthEventSignedOut:
		g.logger.Info("sessão encerrada externamente")
		g.apply(ctx, nil)
	case entity.AuthEventSignedIn, entity.AuthEventTokenRefreshed:
		g.apply(ctx, session)
	default:
		g.logger.Debug("evento de autenticação ignorado", "event", event)
	}
}

func (g *SessionGate) apply(ctx context.Context, session *entity.Session) {
	g.mu.Lock()
	if session.Expired(g.now()) {
		session = nil
	}

	next := AuthUnauthenticated
	if session != nil {
		next = AuthAuthenticated
	}

	prev := g.state
	switched := prev == AuthAuthenticated && next == AuthAuthenticated &&
		g.session != nil && g.session.User.ID != session.User.ID
	g.state = next
	g.session = session
	listeners := append([]StateListener(nil), g.listeners...)
	g.mu.Unlock()

	// Renovação de token do mesmo usuário não muda nada para os dependentes.
	if prev == next && !switched {
		return
	}

	g.logger.Debug("estado de autenticação alterado", "from", prev, "to", next, "user_switched", switched)
	for _, l := range listeners {
		l(ctx, next, session)
	}
}
