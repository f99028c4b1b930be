package database

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/xavierca1/proposal-control/internal/entity"
)

// MemoryStore é um armazenamento em memória com o mesmo contrato da tabela
// proposals. Usado em desenvolvimento (STORE_BACKEND=memory) e nos testes.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]entity.ProposalRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]entity.ProposalRow)}
}

func (s *MemoryStore) List(_ context.Context) ([]entity.ProposalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.ProposalRow, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, copyRow(row))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, errA := entity.ParseTimestamp(out[i].SentDate)
		b, errB := entity.ParseTimestamp(out[j].SentDate)
		if errA != nil || errB != nil {
			return out[i].SentDate > out[j].SentDate
		}
		if a.Equal(b) {
			return out[i].ID < out[j].ID
		}
		return a.After(b)
	})
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, row entity.ProposalRow) (entity.ProposalRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row = copyRow(row)
	row.ID = uuid.New().String()
	s.rows[row.ID] = row
	return copyRow(row), nil
}

func (s *MemoryStore) Update(_ context.Context, row entity.ProposalRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[row.ID]; !ok {
		return entity.ErrRowNotFound
	}
	s.rows[row.ID] = copyRow(row)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return entity.ErrRowNotFound
	}
	delete(s.rows, id)
	return nil
}

func copyRow(r entity.ProposalRow) entity.ProposalRow {
	c := r
	c.SentVia = copyString(r.SentVia)
	c.LastFollowUp = copyString(r.LastFollowUp)
	c.ExpectedReturnDate = copyString(r.ExpectedReturnDate)
	c.Notes = copyString(r.Notes)
	return c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
