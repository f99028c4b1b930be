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
	"github.com/xavierca1/proposal-control/internal/infra/mail"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

func newDigest(sessions usecase.SessionSource, proposals []entity.Proposal, mailer usecase.DigestMailer, now time.Time) *usecase.FollowUpDigestUseCase {
	uc := usecase.NewFollowUpDigestUseCase(sessions, fixedSnapshot{proposals: proposals}, mailer, "vendas@example.com", nil)
	uc.Now = func() time.Time { return now }
	return uc
}

// TestDigestSendsOverdue - só propostas em aberto com retorno vencido
func TestDigestSendsOverdue(t *testing.T) {
	now := day(2024, 2, 1)
	mailer := new(MockDigestMailer)
	mailer.On("SendFollowUpDigest", "vendas@example.com", mock.MatchedBy(func(d mail.FollowUpDigest) bool {
		return len(d.Items) == 2 &&
			d.Items[0].ClientName == "antiga" &&
			d.Items[0].DaysOverdue == 30 &&
			d.TotalValue == 1500
	})).Return(nil)

	uc := newDigest(signedIn(), []entity.Proposal{
		proposal("recente", entity.StatusSent, 500, timePtr(day(2024, 1, 31))),
		proposal("antiga", entity.StatusFollowUp, 1000, timePtr(day(2024, 1, 2))),
		proposal("ganha", entity.StatusWon, 9000, timePtr(day(2024, 1, 2))),
	}, mailer, now)

	sent, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	mailer.AssertExpectations(t)
}

// TestDigestNothingOverdue - nada atrasado, nada enviado
func TestDigestNothingOverdue(t *testing.T) {
	mailer := new(MockDigestMailer)
	uc := newDigest(signedIn(), []entity.Proposal{
		proposal("futura", entity.StatusSent, 1, timePtr(day(2024, 3, 1))),
	}, mailer, day(2024, 2, 1))

	sent, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	mailer.AssertNotCalled(t, "SendFollowUpDigest", mock.Anything, mock.Anything)
}

// TestDigestRequiresSession - relatório também passa pelo portão de sessão
func TestDigestRequiresSession(t *testing.T) {
	mailer := new(MockDigestMailer)
	uc := newDigest(&fixedSessions{}, nil, mailer, time.Now())

	_, err := uc.Execute(context.Background())

	assert.ErrorIs(t, err, usecase.ErrNoSession)
}

// TestDigestDisabledWithoutMailer - sem SMTP configurado
func TestDigestDisabledWithoutMailer(t *testing.T) {
	uc := newDigest(signedIn(), nil, nil, time.Now())

	_, err := uc.Execute(context.Background())

	assert.ErrorIs(t, err, usecase.ErrDigestDisabled)
}

// TestDigestMailFailure - erro de envio é devolvido
func TestDigestMailFailure(t *testing.T) {
	mailer := new(MockDigestMailer)
	mailer.On("SendFollowUpDigest", mock.Anything, mock.Anything).Return(errors.New("smtp: auth failed"))
	uc := newDigest(signedIn(), []entity.Proposal{
		proposal("antiga", entity.StatusSent, 1, timePtr(day(2024, 1, 2))),
	}, mailer, day(2024, 2, 1))

	sent, err := uc.Execute(context.Background())

	assert.Error(t, err)
	assert.Zero(t, sent)
}
