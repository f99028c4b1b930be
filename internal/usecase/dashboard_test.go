package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

func proposal(id string, status entity.Status, value float64, expected *time.Time) entity.Proposal {
	return entity.Proposal{ID: id, ProposalData: entity.ProposalData{
		ClientName:         id,
		SentDate:           day(2024, 1, 1),
		Value:              value,
		Status:             status,
		ExpectedReturnDate: expected,
	}}
}

func timePtr(t time.Time) *time.Time { return &t }

// TestSummarize - agregados por status, conversão e atrasados
func TestSummarize(t *testing.T) {
	now := day(2024, 2, 1)
	proposals := []entity.Proposal{
		proposal("a", entity.StatusSent, 1000, timePtr(day(2024, 1, 20))),
		proposal("b", entity.StatusFollowUp, 500, timePtr(day(2024, 3, 1))),
		proposal("c", entity.StatusWon, 2000, nil),
		proposal("d", entity.StatusWon, 1000, timePtr(day(2024, 1, 5))),
		proposal("e", entity.StatusLost, 300, nil),
		proposal("f", "negociando", 100, nil),
	}

	s := usecase.Summarize(proposals, now)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 4900.0, s.TotalValue)
	assert.Equal(t, usecase.StatusSummary{Count: 2, Value: 3000}, s.ByStatus[entity.StatusWon])
	assert.Equal(t, usecase.StatusSummary{Count: 1, Value: 100}, s.ByStatus["negociando"])
	assert.Equal(t, 3, s.Open)
	assert.Equal(t, 1600.0, s.OpenValue)
	assert.Equal(t, 3000.0, s.WonValue)
	assert.InDelta(t, 2.0/3.0, s.ConversionRate, 1e-9)
	assert.Equal(t, 1, s.OverdueFollowUps)
}

// TestSummarizeEmpty - sem propostas todos os status aparecem zerados
func TestSummarizeEmpty(t *testing.T) {
	s := usecase.Summarize(nil, time.Now())

	assert.Zero(t, s.Total)
	assert.Zero(t, s.ConversionRate)
	assert.Len(t, s.ByStatus, len(entity.KnownStatuses))
}

// TestOverdueOrder - mais atrasadas primeiro, fechadas ignoradas
func TestOverdueOrder(t *testing.T) {
	now := day(2024, 2, 1)
	proposals := []entity.Proposal{
		proposal("recente", entity.StatusSent, 1, timePtr(day(2024, 1, 30))),
		proposal("antiga", entity.StatusFollowUp, 1, timePtr(day(2024, 1, 2))),
		proposal("fechada", entity.StatusLost, 1, timePtr(day(2023, 12, 1))),
		proposal("futura", entity.StatusSent, 1, timePtr(day(2024, 2, 2))),
	}

	got := usecase.Overdue(proposals, now)

	require.Len(t, got, 2)
	assert.Equal(t, "antiga", got[0].ID)
	assert.Equal(t, "recente", got[1].ID)
}
