package usecase

import (
	"context"

	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/infra/mail"
	"github.com/xavierca1/proposal-control/internal/infra/queue"
)

// Notifier entrega as mensagens transitórias de sucesso/falha ao operador.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}

// EventPublisher divulga as mudanças confirmadas no armazenamento.
type EventPublisher interface {
	PublishProposalEvent(ctx context.Context, event queue.ProposalEvent) error
}

// SessionSource é o que os componentes de dados precisam do SessionGate.
type SessionSource interface {
	CurrentSession() *entity.Session
}

// SnapshotSource expõe a coleção atual em memória.
type SnapshotSource interface {
	Snapshot() Snapshot
}

type DigestMailer interface {
	SendFollowUpDigest(to string, digest mail.FollowUpDigest) error
}

// Recorder recebe os resultados das operações para métricas.
type Recorder interface {
	RecordAuthAttempt(result string)
	RecordLoad(result string)
	RecordWrite(op, result string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, entity.Notification) {}

type nopRecorder struct{}

func (nopRecorder) RecordAuthAttempt(string)   {}
func (nopRecorder) RecordLoad(string)          {}
func (nopRecorder) RecordWrite(string, string) {}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
