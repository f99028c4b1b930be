package entity

import "time"

// Status é o estágio do ciclo de vida de uma proposta. O conjunto é definido
// pela interface; o core não rejeita valores fora da lista.
type Status string

const (
	StatusSent     Status = "sent"
	StatusFollowUp Status = "follow-up"
	StatusWon      Status = "won"
	StatusLost     Status = "lost"
)

// KnownStatuses lista os estágios exibidos pela interface, na ordem do funil.
var KnownStatuses = []Status{StatusSent, StatusFollowUp, StatusWon, StatusLost}

// ProposalData são os campos editáveis de uma proposta (tudo menos o ID).
type ProposalData struct {
	ClientName         string     `json:"clientName"`
	SentDate           time.Time  `json:"sentDate"`
	Value              float64    `json:"value"`
	Status             Status     `json:"status"`
	SentVia            *string    `json:"sentVia,omitempty"`
	LastFollowUp       *time.Time `json:"lastFollowUp,omitempty"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// Proposal é o formato consumido pela interface (camelCase, datas nativas).
// O ID é atribuído pelo armazenamento e nunca muda depois disso.
type Proposal struct {
	ID string `json:"id"`
	ProposalData
}

// IsClosed indica que a proposta já teve resposta do cliente.
func (p Proposal) IsClosed() bool {
	return p.Status == StatusWon || p.Status == StatusLost
}

// Clone devolve uma cópia que não compartilha ponteiros com a original.
func (p Proposal) Clone() Proposal {
	c := p
	c.SentVia = cloneString(p.SentVia)
	c.Notes = cloneString(p.Notes)
	c.LastFollowUp = cloneTime(p.LastFollowUp)
	c.ExpectedReturnDate = cloneTime(p.ExpectedReturnDate)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
