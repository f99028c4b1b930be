package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProposalRow é o formato da tabela `proposals` (snake_case, datas em ISO-8601).
// Campos opcionais ausentes viajam como null, nunca como data sentinela.
type ProposalRow struct {
	ID                 string      `json:"id,omitempty"`
	ClientName         string      `json:"client_name"`
	SentDate           string      `json:"sent_date"`
	Value              json.Number `json:"value"`
	Status             string      `json:"status"`
	SentVia            *string     `json:"sent_via"`
	LastFollowUp       *string     `json:"last_follow_up"`
	ExpectedReturnDate *string     `json:"expected_return_date"`
	Notes              *string     `json:"notes"`
}

// TranslationError indica uma coluna que não pôde ser convertida para o formato da interface.
type TranslationError struct {
	Field string
	Value string
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("coluna %s com valor inválido %q: %v", e.Field, e.Value, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Layouts aceitos na leitura: o PostgREST devolve timestamptz com offset,
// timestamp sem fuso, ou date puro dependendo do tipo da coluna.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02",
}

// FormatTimestamp converte um instante para a string ISO-8601 gravada no banco.
// TIMESTAMPTZ guarda microssegundos; a fração menor é descartada aqui para que
// o que volta do banco seja igual ao que foi gravado.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)
}

// ParseTimestamp lê uma data vinda do banco e a normaliza para UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range readLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// DataToRow traduz os campos da interface para o formato de armazenamento.
// O ID fica vazio: quem atribui é o armazenamento.
func DataToRow(d ProposalData) ProposalRow {
	return ProposalRow{
		ClientName:         d.ClientName,
		SentDate:           FormatTimestamp(d.SentDate),
		Value:              json.Number(strconv.FormatFloat(d.Value, 'f', -1, 64)),
		Status:             string(d.Status),
		SentVia:            cloneString(d.SentVia),
		LastFollowUp:       optionalTimestamp(d.LastFollowUp),
		ExpectedReturnDate: optionalTimestamp(d.ExpectedReturnDate),
		Notes:              cloneString(d.Notes),
	}
}

// ToRow traduz uma proposta completa, mantendo o ID.
func ToRow(p Proposal) ProposalRow {
	row := DataToRow(p.ProposalData)
	row.ID = p.ID
	return row
}

// FromRow traduz uma linha do banco para o formato da interface. Qualquer
// coluna inválida aborta a tradução inteira.
func FromRow(r ProposalRow) (Proposal, error) {
	sentDate, err := ParseTimestamp(r.SentDate)
	if err != nil {
		return Proposal{}, &TranslationError{Field: "sent_date", Value: r.SentDate, Err: err}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(r.Value.String()), 64)
	if err != nil {
		return Proposal{}, &TranslationError{Field: "value", Value: r.Value.String(), Err: err}
	}

	lastFollowUp, err := parseOptionalTimestamp("last_follow_up", r.LastFollowUp)
	if err != nil {
		return Proposal{}, err
	}

	expectedReturn, err := parseOptionalTimestamp("expected_return_date", r.ExpectedReturnDate)
	if err != nil {
		return Proposal{}, err
	}

	return Proposal{
		ID: r.ID,
		ProposalData: ProposalData{
			ClientName:         r.ClientName,
			SentDate:           sentDate,
			Value:              value,
			Status:             Status(r.Status),
			SentVia:            cloneString(r.SentVia),
			LastFollowUp:       lastFollowUp,
			ExpectedReturnDate: expectedReturn,
			Notes:              cloneString(r.Notes),
		},
	}, nil
}

func optionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}

func parseOptionalTimestamp(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil, &TranslationError{Field: field, Value: *s, Err: err}
	}
	return &t, nil
}
