package entity

import (
	"context"
	"errors"
)

// ErrRowNotFound é devolvido quando update/delete não encontra o ID.
var ErrRowNotFound = errors.New("proposta não encontrada")

// ProposalStore é a fronteira com o armazenamento tabular (tabela proposals).
// List devolve sempre ordenado por sent_date decrescente.
type ProposalStore interface {
	List(ctx context.Context) ([]ProposalRow, error)
	Insert(ctx context.Context, row ProposalRow) (ProposalRow, error)
	Update(ctx context.Context, row ProposalRow) error
	Delete(ctx context.Context, id string) error
}
