package usecase

import (
	"sort"
	"time"

	"github.com/xavierca1/proposal-control/internal/entity"
)

type StatusSummary struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// Summary são os agregados do painel.
type Summary struct {
	Total            int                             `json:"total"`
	TotalValue       float64                         `json:"total_value"`
	ByStatus         map[entity.Status]StatusSummary `json:"by_status"`
	Open             int                             `json:"open"`
	OpenValue        float64                         `json:"open_value"`
	WonValue         float64                         `json:"won_value"`
	ConversionRate   float64                         `json:"conversion_rate"`
	OverdueFollowUps int                             `json:"overdue_follow_ups"`
}

// Summarize calcula o painel a partir da coleção ordenada.
func Summarize(proposals []entity.Proposal, now time.Time) Summary {
	s := Summary{ByStatus: make(map[entity.Status]StatusSummary, len(entity.KnownStatuses))}
	for _, status := range entity.KnownStatuses {
		s.ByStatus[status] = StatusSummary{}
	}

	for _, p := range proposals {
		s.Total++
		s.TotalValue += p.Value

		bucket := s.ByStatus[p.Status]
		bucket.Count++
		bucket.Value += p.Value
		s.ByStatus[p.Status] = bucket

		if !p.IsClosed() {
			s.Open++
			s.OpenValue += p.Value
		}
		if p.Status == entity.StatusWon {
			s.WonValue += p.Value
		}
	}

	won := s.ByStatus[entity.StatusWon].Count
	lost := s.ByStatus[entity.StatusLost].Count
	if won+lost > 0 {
		s.ConversionRate = float64(won) / float64(won+lost)
	}

	s.OverdueFollowUps = len(Overdue(proposals, now))
	return s
}

// Overdue lista as propostas em aberto cujo retorno esperado já passou,
// mais atrasadas primeiro.
func Overdue(proposals []entity.Proposal, now time.Time) []entity.Proposal {
	var out []entity.Proposal
	for _, p := range proposals {
		if p.IsClosed() || p.ExpectedReturnDate == nil {
			continue
		}
		if p.ExpectedReturnDate.Before(now) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpectedReturnDate.Before(*out[j].ExpectedReturnDate)
	})
	return out
}
