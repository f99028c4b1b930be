package usecase_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/infra/mail"
	"github.com/xavierca1/proposal-control/internal/infra/queue"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

// MockIdentityService guarda o ouvinte registrado para simular eventos externos.
type MockIdentityService struct {
	mock.Mock
	listener entity.AuthListener
}

func (m *MockIdentityService) SignInWithPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockIdentityService) GetSession(ctx context.Context) (*entity.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockIdentityService) OnAuthStateChange(listener entity.AuthListener) func() {
	m.listener = listener
	return func() { m.listener = nil }
}

func (m *MockIdentityService) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockIdentityService) fire(event entity.AuthEvent, session *entity.Session) {
	if m.listener != nil {
		m.listener(event, session)
	}
}

// MockProposalStore
type MockProposalStore struct {
	mock.Mock
}

func (m *MockProposalStore) List(ctx context.Context) ([]entity.ProposalRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProposalRow), args.Error(1)
}

func (m *MockProposalStore) Insert(ctx context.Context, row entity.ProposalRow) (entity.ProposalRow, error) {
	args := m.Called(ctx, row)
	return args.Get(0).(entity.ProposalRow), args.Error(1)
}

func (m *MockProposalStore) Update(ctx context.Context, row entity.ProposalRow) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockProposalStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProposalEvent(ctx context.Context, event queue.ProposalEvent) error {
	return m.Called(ctx, event).Error(0)
}

// MockDigestMailer
type MockDigestMailer struct {
	mock.Mock
}

func (m *MockDigestMailer) SendFollowUpDigest(to string, digest mail.FollowUpDigest) error {
	return m.Called(to, digest).Error(0)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []entity.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, item entity.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item)
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.items))
	for _, item := range n.items {
		out = append(out, item.Message)
	}
	return out
}

type fixedSessions struct {
	mu      sync.Mutex
	session *entity.Session
}

func (f *fixedSessions) CurrentSession() *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fixedSessions) set(s *entity.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = s
}

type fixedSnapshot struct {
	proposals []entity.Proposal
}

func (f fixedSnapshot) Snapshot() usecase.Snapshot {
	return usecase.Snapshot{Proposals: f.proposals}
}
