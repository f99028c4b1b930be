package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

func validSession() *entity.Session {
	return &entity.Session{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        entity.User{ID: "u1", Email: "ana@example.com"},
	}
}

type stateLog struct {
	states []usecase.AuthState
}

func (l *stateLog) listen(_ context.Context, state usecase.AuthState, _ *entity.Session) {
	l.states = append(l.states, state)
}

// TestGateStartsUnknown - nada é assumido antes de consultar a identidade
func TestGateStartsUnknown(t *testing.T) {
	gate := usecase.NewSessionGate(new(MockIdentityService), nil, nil, nil)

	assert.Equal(t, usecase.AuthUnknown, gate.State())
	assert.Nil(t, gate.CurrentSession())
}

// TestGateStartResolvesState - sessão existente vira Authenticated
func TestGateStartResolvesState(t *testing.T) {
	id := new(MockIdentityService)
	session := validSession()
	id.On("GetSession", mock.Anything).Return(session, nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)
	log := &stateLog{}
	gate.Subscribe(log.listen)

	require.NoError(t, gate.Start(context.Background()))

	assert.Equal(t, usecase.AuthAuthenticated, gate.State())
	assert.Same(t, session, gate.CurrentSession())
	assert.Equal(t, []usecase.AuthState{usecase.AuthAuthenticated}, log.states)
}

// TestGateStartWithoutSession - ausência ou erro viram Unauthenticated
func TestGateStartWithoutSession(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Return(nil, errors.New("storage vazio"))
	gate := usecase.NewSessionGate(id, nil, nil, nil)

	require.NoError(t, gate.Start(context.Background()))

	assert.Equal(t, usecase.AuthUnauthenticated, gate.State())
}

// TestGateExpiredSessionIsAbsent - sessão vencida não conta como presente
func TestGateExpiredSessionIsAbsent(t *testing.T) {
	id := new(MockIdentityService)
	expired := validSession()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	id.On("GetSession", mock.Anything).Return(expired, nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)

	require.NoError(t, gate.Start(context.Background()))

	assert.Equal(t, usecase.AuthUnauthenticated, gate.State())
	assert.Nil(t, gate.CurrentSession())
}

// TestSignInSuccess - guarda a sessão e dá boas-vindas
func TestSignInSuccess(t *testing.T) {
	id := new(MockIdentityService)
	notifier := &recordingNotifier{}
	id.On("GetSession", mock.Anything).Return(nil, nil)
	id.On("SignInWithPassword", mock.Anything, "ana@example.com", "secret").Return(validSession(), nil)
	gate := usecase.NewSessionGate(id, notifier, nil, nil)
	require.NoError(t, gate.Start(context.Background()))

	session, err := gate.SignIn(context.Background(), " ana@example.com ", "secret")

	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, usecase.AuthAuthenticated, gate.State())
	assert.Equal(t, []string{usecase.MsgWelcome}, notifier.messages())
}

// TestSignInFailureKeepsState - erro genérico e estado anterior mantido
func TestSignInFailureKeepsState(t *testing.T) {
	id := new(MockIdentityService)
	notifier := &recordingNotifier{}
	current := validSession()
	id.On("GetSession", mock.Anything).Return(current, nil)
	id.On("SignInWithPassword", mock.Anything, "ana@example.com", "errada").Return(nil, errors.New("Invalid login credentials"))
	gate := usecase.NewSessionGate(id, notifier, nil, nil)
	require.NoError(t, gate.Start(context.Background()))

	_, err := gate.SignIn(context.Background(), "ana@example.com", "errada")

	var authErr *usecase.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, usecase.CodeInvalidCredentials, authErr.Code)
	assert.Equal(t, usecase.MsgLoginFailed, authErr.Message)
	assert.Equal(t, usecase.AuthAuthenticated, gate.State())
	assert.Same(t, current, gate.CurrentSession())
	assert.Equal(t, []string{usecase.MsgLoginFailed}, notifier.messages())
}

// TestSignInUnknownUserSameMessage - conta inexistente e senha errada são indistinguíveis
func TestSignInUnknownUserSameMessage(t *testing.T) {
	id := new(MockIdentityService)
	id.On("SignInWithPassword", mock.Anything, "ninguem@example.com", "x").Return(nil, errors.New("User not found"))
	id.On("SignInWithPassword", mock.Anything, "ana@example.com", "x").Return(nil, errors.New("Invalid password"))
	gate := usecase.NewSessionGate(id, nil, nil, nil)

	_, errUnknown := gate.SignIn(context.Background(), "ninguem@example.com", "x")
	_, errWrong := gate.SignIn(context.Background(), "ana@example.com", "x")

	var a, b *usecase.AuthError
	require.ErrorAs(t, errUnknown, &a)
	require.ErrorAs(t, errWrong, &b)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Code, b.Code)
}

// TestSignInBlankCredentials - nem chega ao serviço de identidade
func TestSignInBlankCredentials(t *testing.T) {
	id := new(MockIdentityService)
	gate := usecase.NewSessionGate(id, nil, nil, nil)

	_, err := gate.SignIn(context.Background(), "  ", "")

	assert.True(t, usecase.IsAuthError(err))
	id.AssertNotCalled(t, "SignInWithPassword", mock.Anything, mock.Anything, mock.Anything)
}

// TestSignOutClearsEvenIfRemoteFails - o estado local sai primeiro
func TestSignOutClearsEvenIfRemoteFails(t *testing.T) {
	id := new(MockIdentityService)
	notifier := &recordingNotifier{}
	id.On("GetSession", mock.Anything).Return(validSession(), nil)
	id.On("SignOut", mock.Anything).Return(errors.New("network down"))
	gate := usecase.NewSessionGate(id, notifier, nil, nil)
	require.NoError(t, gate.Start(context.Background()))

	var stateDuringListener usecase.AuthState
	gate.Subscribe(func(_ context.Context, state usecase.AuthState, _ *entity.Session) {
		stateDuringListener = state
	})

	gate.SignOut(context.Background())

	assert.Equal(t, usecase.AuthUnauthenticated, stateDuringListener)
	assert.Equal(t, usecase.AuthUnauthenticated, gate.State())
	assert.Nil(t, gate.CurrentSession())
	assert.Equal(t, []string{usecase.MsgLoggedOut}, notifier.messages())
}

// TestExternalSignOutPropagates - expiração/logout em outro lugar chega aos dependentes
func TestExternalSignOutPropagates(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Return(validSession(), nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)
	log := &stateLog{}
	gate.Subscribe(log.listen)
	require.NoError(t, gate.Start(context.Background()))

	id.fire(entity.AuthEventSignedOut, nil)
	id.fire(entity.AuthEventSignedOut, nil)

	assert.Equal(t, usecase.AuthUnauthenticated, gate.State())
	assert.Equal(t, []usecase.AuthState{usecase.AuthAuthenticated, usecase.AuthUnauthenticated}, log.states)
}

// TestTokenRefreshKeepsAuthenticated - renovação troca a sessão sem notificar dependentes
func TestTokenRefreshKeepsAuthenticated(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Return(validSession(), nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)
	log := &stateLog{}
	gate.Subscribe(log.listen)
	require.NoError(t, gate.Start(context.Background()))

	refreshed := validSession()
	refreshed.AccessToken = "tok-2"
	id.fire(entity.AuthEventTokenRefreshed, refreshed)

	assert.Equal(t, "tok-2", gate.CurrentSession().AccessToken)
	assert.Len(t, log.states, 1)
}

// TestSignInAsAnotherUserNotifies - troca de usuário avisa os dependentes mesmo sem mudar o estado
func TestSignInAsAnotherUserNotifies(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Return(validSession(), nil)
	other := validSession()
	other.AccessToken = "tok-bob"
	other.User = entity.User{ID: "u2", Email: "bob@example.com"}
	id.On("SignInWithPassword", mock.Anything, "bob@example.com", "x").Return(other, nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)
	log := &stateLog{}
	gate.Subscribe(log.listen)
	require.NoError(t, gate.Start(context.Background()))

	_, err := gate.SignIn(context.Background(), "bob@example.com", "x")

	require.NoError(t, err)
	assert.Equal(t, []usecase.AuthState{usecase.AuthAuthenticated, usecase.AuthAuthenticated}, log.states)
	assert.Equal(t, "u2", gate.CurrentSession().User.ID)
}

// TestExternalEventBeforeInitialSession - evento que chega antes do GetSession prevalece
func TestExternalEventBeforeInitialSession(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Run(func(mock.Arguments) {
		id.fire(entity.AuthEventSignedIn, validSession())
	}).Return(nil, nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)

	require.NoError(t, gate.Start(context.Background()))

	assert.Equal(t, usecase.AuthAuthenticated, gate.State())
}

// TestStopUnsubscribes - depois do Stop eventos externos são ignorados
func TestStopUnsubscribes(t *testing.T) {
	id := new(MockIdentityService)
	id.On("GetSession", mock.Anything).Return(validSession(), nil)
	gate := usecase.NewSessionGate(id, nil, nil, nil)
	require.NoError(t, gate.Start(context.Background()))

	gate.Stop()
	id.fire(entity.AuthEventSignedOut, nil)

	assert.Equal(t, usecase.AuthAuthenticated, gate.State())
}
