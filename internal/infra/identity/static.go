package identity

import (
	"context"
	"sync"

	"github.com/xavierca1/proposal-control/internal/entity"
)

// Static é a identidade sem autenticação (AUTH_MODE=none): a sessão do
// operador já existe ao iniciar e qualquer credencial é aceita.
type Static struct {
	operator entity.Session

	mu        sync.Mutex
	present   bool
	listeners map[int]entity.AuthListener
	nextID    int
}

func NewStatic(email string) *Static {
	if email == "" {
		email = "operador@local"
	}
	return &Static{
		operator: entity.Session{
			AccessToken: "local",
			User:        entity.User{ID: "local-operator", Email: email},
		},
		present:   true,
		listeners: make(map[int]entity.AuthListener),
	}
}

func (s *Static) SignInWithPassword(_ context.Context, email, _ string) (*entity.Session, error) {
	session := s.operator
	if email != "" {
		session.User.Email = email
	}

	s.mu.Lock()
	s.operator = session
	s.present = true
	s.mu.Unlock()

	s.emit(entity.AuthEventSignedIn, &session)
	return &session, nil
}

func (s *Static) GetSession(_ context.Context) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return nil, nil
	}
	session := s.operator
	return &session, nil
}

func (s *Static) OnAuthStateChange(listener entity.AuthListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Static) SignOut(_ context.Context) error {
	s.mu.Lock()
	was := s.present
	s.present = false
	s.mu.Unlock()

	if was {
		s.emit(entity.AuthEventSignedOut, nil)
	}
	return nil
}

func (s *Static) emit(event entity.AuthEvent, session *entity.Session) {
	s.mu.Lock()
	listeners := make([]entity.AuthListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(event, session)
	}
}
