package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xavierca1/proposal-control/internal/infra/mail"
)

var ErrDigestDisabled = errors.New("relatório de follow-up não configurado")

// FollowUpDigestUseCase envia por email as propostas em aberto com retorno
// vencido, a partir da coleção já carregada (não faz nova leitura).
type FollowUpDigestUseCase struct {
	Sessions  SessionSource
	Source    SnapshotSource
	Mailer    DigestMailer
	Recipient string
	Now       func() time.Time
	Logger    *slog.Logger
}

func NewFollowUpDigestUseCase(sessions SessionSource, source SnapshotSource, mailer DigestMailer, recipient string, logger *slog.Logger) *FollowUpDigestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &FollowUpDigestUseCase{
		Sessions:  sessions,
		Source:    source,
		Mailer:    mailer,
		Recipient: recipient,
		Now:       time.Now,
		Logger:    logger,
	}
}

// Execute devolve quantas propostas foram incluídas no email.
func (uc *FollowUpDigestUseCase) Execute(ctx context.Context) (int, error) {
	if uc.Sessions.CurrentSession() == nil {
		return 0, ErrNoSession
	}
	if uc.Mailer == nil || uc.Recipient == "" {
		return 0, ErrDigestDisabled
	}

	now := uc.Now()
	overdue := Overdue(uc.Source.Snapshot().Proposals, now)
	if len(overdue) == 0 {
		uc.Logger.Info("nenhum follow-up atrasado; email não enviado")
		return 0, nil
	}

	digest := mail.FollowUpDigest{GeneratedAt: now}
	for _, p := range overdue {
		item := mail.DigestItem{
			ClientName:         p.ClientName,
			Status:             string(p.Status),
			Value:              p.Value,
			SentDate:           p.SentDate,
			ExpectedReturnDate: *p.ExpectedReturnDate,
			DaysOverdue:        int(math.Floor(now.Sub(*p.ExpectedReturnDate).Hours() / 24)),
		}
		if p.LastFollowUp != nil {
			last := *p.LastFollowUp
			item.LastFollowUp = &last
		}
		digest.Items = append(digest.Items, item)
		digest.TotalValue += p.Value
	}

	if err := uc.Mailer.SendFollowUpDigest(uc.Recipient, digest); err != nil {
		uc.Logger.Error("falha ao enviar relatório de follow-up", "error", err)
		return 0, fmt.Errorf("erro ao enviar relatório: %w", err)
	}

	uc.Logger.Info("relatório de follow-up enviado", "to", uc.Recipient, "items", len(digest.Items))
	return len(digest.Items), nil
}
