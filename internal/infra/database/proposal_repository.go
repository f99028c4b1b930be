package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/xavierca1/proposal-control/internal/entity"
)

const proposalColumns = `id, client_name, sent_date, value, status, sent_via, last_follow_up, expected_return_date, notes`

// ProposalRepository acessa a tabela proposals diretamente pelo Postgres.
type ProposalRepository struct {
	DB *sql.DB
}

func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{DB: db}
}

func (r *ProposalRepository) List(ctx context.Context) ([]entity.ProposalRow, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals ORDER BY sent_date DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar propostas: %w", err)
	}
	defer rows.Close()

	out := []entity.ProposalRow{}
	for rows.Next() {
		row, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear proposta: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao percorrer propostas: %w", err)
	}
	return out, nil
}

func (r *ProposalRepository) Insert(ctx context.Context, row entity.ProposalRow) (entity.ProposalRow, error) {
	query := `
		INSERT INTO proposals (client_name, sent_date, value, status, sent_via, last_follow_up, expected_return_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + proposalColumns

	stored, err := scanProposal(r.DB.QueryRowContext(ctx, query,
		row.ClientName,
		row.SentDate,
		row.Value.String(),
		row.Status,
		row.SentVia,
		row.LastFollowUp,
		row.ExpectedReturnDate,
		row.Notes,
	))
	if err != nil {
		return entity.ProposalRow{}, fmt.Errorf("erro ao criar proposta: %w", err)
	}
	return stored, nil
}

// Update grava todas as colunas, inclusive NULL para opcionais ausentes.
func (r *ProposalRepository) Update(ctx context.Context, row entity.ProposalRow) error {
	query := `
		UPDATE proposals SET
			client_name = $2,
			sent_date = $3,
			value = $4,
			status = $5,
			sent_via = $6,
			last_follow_up = $7,
			expected_return_date = $8,
			notes = $9,
			updated_at = NOW()
		WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query,
		row.ID,
		row.ClientName,
		row.SentDate,
		row.Value.String(),
		row.Status,
		row.SentVia,
		row.LastFollowUp,
		row.ExpectedReturnDate,
		row.Notes,
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar proposta: %w", translateError(err))
	}
	return requireAffected(res)
}

func (r *ProposalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao deletar proposta: %w", translateError(err))
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProposal(s scanner) (entity.ProposalRow, error) {
	var (
		row            entity.ProposalRow
		sentDate       sql.NullTime
		value          string
		sentVia, notes sql.NullString
		lastFollowUp   sql.NullTime
		expectedReturn sql.NullTime
	)

	if err := s.Scan(&row.ID, &row.ClientName, &sentDate, &value, &row.Status, &sentVia, &lastFollowUp, &expectedReturn, &notes); err != nil {
		return entity.ProposalRow{}, err
	}

	if sentDate.Valid {
		row.SentDate = entity.FormatTimestamp(sentDate.Time)
	}
	row.Value = json.Number(value)
	row.SentVia = stringPtr(sentVia)
	row.Notes = stringPtr(notes)
	row.LastFollowUp = timestampPtr(lastFollowUp)
	row.ExpectedReturnDate = timestampPtr(expectedReturn)
	return row, nil
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timestampPtr(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	v := entity.FormatTimestamp(t.Time)
	return &v
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrRowNotFound
	}
	return nil
}

// translateError trata ID que nem é UUID válido como registro inexistente.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return entity.ErrRowNotFound
	}
	return err
}
