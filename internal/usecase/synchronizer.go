package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/infra/queue"
)

// Snapshot é a visão da coleção em memória entregue à apresentação.
type Snapshot struct {
	Loading   bool              `json:"loading"`
	Loaded    bool              `json:"loaded"`
	LoadedAt  *time.Time        `json:"loaded_at,omitempty"`
	Proposals []entity.Proposal `json:"proposals"`
}

// RecordSynchronizer é o único dono da coleção de propostas em memória.
// Consistência: toda gravação bem-sucedida é seguida de um LoadAll completo;
// a coleção nunca é corrigida incrementalmente, só substituída inteira.
type RecordSynchronizer struct {
	store    entity.ProposalStore
	sessions SessionSource
	notifier Notifier
	events   EventPublisher
	recorder Recorder
	logger   *slog.Logger

	// loadMu serializa os LoadAll para que uma leitura antiga não sobrescreva uma nova.
	loadMu  sync.Mutex
	loading atomic.Bool
	writing atomic.Bool

	mu         sync.RWMutex
	proposals  []entity.Proposal
	loaded     bool
	loadedAt   time.Time
	generation uint64
}

type SynchronizerDeps struct {
	Store    entity.ProposalStore
	Sessions SessionSource
	Notifier Notifier
	Events   EventPublisher
	Recorder Recorder
	Logger   *slog.Logger
}

func NewRecordSynchronizer(deps SynchronizerDeps) *RecordSynchronizer {
	s := &RecordSynchronizer{
		store:    deps.Store,
		sessions: deps.Sessions,
		notifier: deps.Notifier,
		events:   deps.Events,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// LoadAll busca todas as propostas (sent_date desc), traduz e substitui a
// coleção. Em qualquer falha a coleção anterior é mantida. Uma vez iniciada,
// a leitura não é cancelada pelo chamador.
func (s *RecordSynchronizer) LoadAll(ctx context.Context) ([]entity.Proposal, error) {
	ctx = context.WithoutCancel(ctx)

	// A geração é lida antes da sessão: um Clear entre os dois passos faz a
	// leitura ser descartada, mesmo que ela espere atrás de outra no loadMu.
	s.mu.RLock()
	generation := s.generation
	s.mu.RUnlock()

	session := s.sessions.CurrentSession()
	if session == nil {
		return nil, ErrNoSession
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.loading.Store(true)
	defer s.loading.Store(false)

	rows, err := s.store.List(entity.ContextWithSession(ctx, session))
	if err != nil {
		return nil, s.loadFailed(ctx, err)
	}

	proposals := make([]entity.Proposal, 0, len(rows))
	for _, row := range rows {
		p, err := entity.FromRow(row)
		if err != nil {
			return nil, s.loadFailed(ctx, err)
		}
		proposals = append(proposals, p)
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].SentDate.After(proposals[j].SentDate)
	})

	s.mu.Lock()
	if s.generation != generation || s.sessions.CurrentSession() == nil {
		// Logout durante a leitura: o resultado pertence a uma sessão que já acabou.
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	s.proposals = proposals
	s.loaded = true
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.recorder.RecordLoad("success")
	s.logger.Debug("propostas carregadas", "count", len(proposals))
	return cloneAll(proposals), nil
}

func (s *RecordSynchronizer) loadFailed(ctx context.Context, err error) error {
	s.recorder.RecordLoad("error")
	s.logger.Error("erro ao buscar propostas", "error", err)
	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationError, MsgLoadFailed))
	return &DataError{Code: CodeFetchFailed, Op: "loadAll", Message: MsgLoadFailed, Err: err}
}

// Create grava uma nova proposta e recarrega a coleção; o ID vem do servidor.
// Gravação e recarga seguem até o fim mesmo se o chamador desistir.
func (s *RecordSynchronizer) Create(ctx context.Context, draft entity.ProposalData) error {
	ctx = context.WithoutCancel(ctx)

	session := s.sessions.CurrentSession()
	if session == nil {
		return ErrNoSession
	}

	if fields := ValidateProposal(draft); len(fields) > 0 {
		return s.rejected(ctx, "create", MsgSaveFailed, fields)
	}

	if !s.writing.CompareAndSwap(false, true) {
		return ErrWriteInFlight
	}
	defer s.writing.Store(false)

	stored, err := s.store.Insert(entity.ContextWithSession(ctx, session), entity.DataToRow(draft))
	s.recorder.RecordWrite("create", resultLabel(err))
	if err != nil {
		return s.writeFailed(ctx, "create", CodeInsertFailed, MsgSaveFailed, err)
	}

	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationSuccess, MsgSaved))
	s.publish(ctx, queue.EventProposalCreated, stored.ID, draft)
	s.reload(ctx)
	return nil
}

// Update grava todos os campos da proposta (inclusive ausências) pelo ID.
func (s *RecordSynchronizer) Update(ctx context.Context, p entity.Proposal) error {
	ctx = context.WithoutCancel(ctx)

	session := s.sessions.CurrentSession()
	if session == nil {
		return ErrNoSession
	}

	fields := ValidateProposal(p.ProposalData)
	if strings.TrimSpace(p.ID) == "" {
		fields = append([]ValidationError{{"id", "is required"}}, fields...)
	}
	if len(fields) > 0 {
		return s.rejected(ctx, "update", MsgUpdateFail, fields)
	}

	if !s.writing.CompareAndSwap(false, true) {
		return ErrWriteInFlight
	}
	defer s.writing.Store(false)

	err := s.store.Update(entity.ContextWithSession(ctx, session), entity.ToRow(p))
	s.recorder.RecordWrite("update", resultLabel(err))
	if err != nil {
		return s.writeFailed(ctx, "update", CodeUpdateFailed, MsgUpdateFail, err)
	}

	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationSuccess, MsgUpdated))
	s.publish(ctx, queue.EventProposalUpdated, p.ID, p.ProposalData)
	s.reload(ctx)
	return nil
}

func (s *RecordSynchronizer) Delete(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)

	session := s.sessions.CurrentSession()
	if session == nil {
		return ErrNoSession
	}

	if strings.TrimSpace(id) == "" {
		return s.rejected(ctx, "delete", MsgDeleteFail, []ValidationError{{"id", "is required"}})
	}

	err := s.store.Delete(entity.ContextWithSession(ctx, session), id)
	s.recorder.RecordWrite("delete", resultLabel(err))
	if err != nil {
		return s.writeFailed(ctx, "delete", CodeDeleteFailed, MsgDeleteFail, err)
	}

	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationSuccess, MsgDeleted))
	s.publish(ctx, queue.EventProposalDeleted, id, entity.ProposalData{})
	s.reload(ctx)
	return nil
}

// Clear esvazia a coleção (logout). Leituras em andamento são descartadas.
func (s *RecordSynchronizer) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proposals = nil
	s.loaded = false
	s.loadedAt = time.Time{}
	s.generation++
}

// Snapshot devolve uma cópia da coleção; quem lê nunca altera o estado interno.
func (s *RecordSynchronizer) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Loading:   s.loading.Load(),
		Loaded:    s.loaded,
		Proposals: cloneAll(s.proposals),
	}
	if s.loaded {
		at := s.loadedAt
		snap.LoadedAt = &at
	}
	return snap
}

// Writing indica um create/update em andamento (a apresentação desabilita o envio).
func (s *RecordSynchronizer) Writing() bool {
	return s.writing.Load()
}

func (s *RecordSynchronizer) reload(ctx context.Context) {
	if _, err := s.LoadAll(ctx); err != nil {
		s.logger.Warn("gravação confirmada, mas a recarga falhou", "error", err)
	}
}

func (s *RecordSynchronizer) rejected(ctx context.Context, op, message string, fields []ValidationError) error {
	s.recorder.RecordWrite(op, "rejected")
	s.logger.Info("gravação recusada pela validação", "op", op, "fields", fields)
	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationError, message))
	return &DataError{Code: CodeValidation, Op: op, Message: validationMessage(fields), Fields: fields}
}

func (s *RecordSynchronizer) writeFailed(ctx context.Context, op, code, message string, err error) error {
	if errors.Is(err, entity.ErrRowNotFound) {
		code = CodeNotFound
		message = MsgNotFound
	}
	s.logger.Error("erro ao gravar proposta", "op", op, "error", err)
	s.notifier.Notify(ctx, entity.NewNotification(entity.NotificationError, message))
	return &DataError{Code: code, Op: op, Message: message, Err: err}
}

func (s *RecordSynchronizer) publish(ctx context.Context, eventType, id string, d entity.ProposalData) {
	if s.events == nil {
		return
	}
	event := queue.NewProposalEvent(eventType, id, d.ClientName, string(d.Status), d.Value)
	if err := s.events.PublishProposalEvent(ctx, event); err != nil {
		// A gravação já foi confirmada; o evento perdido fica só no log.
		s.logger.Warn("proposta gravada, mas falha na fila", "event", eventType, "proposal_id", id, "error", err)
	}
}

func cloneAll(in []entity.Proposal) []entity.Proposal {
	out := make([]entity.Proposal, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
