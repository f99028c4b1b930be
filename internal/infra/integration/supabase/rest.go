package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/proposal-control/internal/entity"
)

const proposalsTable = "proposals"

// RestStore acessa a tabela proposals pelo PostgREST do Supabase.
// O token do usuário vem do contexto (entity.ContextWithSession); sem ele
// usa a chave anônima e o RLS decide.
type RestStore struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger
}

func NewRestStore(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *RestStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestStore{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *RestStore) List(ctx context.Context) ([]entity.ProposalRow, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "sent_date.desc")

	var rows []entity.ProposalRow
	if err := s.do(ctx, http.MethodGet, q, nil, "", &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entity.ProposalRow{}
	}
	return rows, nil
}

func (s *RestStore) Insert(ctx context.Context, row entity.ProposalRow) (entity.ProposalRow, error) {
	row.ID = ""

	var stored []entity.ProposalRow
	if err := s.do(ctx, http.MethodPost, nil, row, "return=representation", &stored); err != nil {
		return entity.ProposalRow{}, err
	}
	if len(stored) == 0 {
		return entity.ProposalRow{}, fmt.Errorf("supabase não devolveu a linha inserida")
	}
	return stored[0], nil
}

// Update envia todas as colunas; opcionais ausentes vão como null explícito.
func (s *RestStore) Update(ctx context.Context, row entity.ProposalRow) error {
	id := row.ID
	row.ID = ""

	var affected []entity.ProposalRow
	if err := s.do(ctx, http.MethodPatch, idFilter(id), row, "return=representation", &affected); err != nil {
		return err
	}
	if len(affected) == 0 {
		return entity.ErrRowNotFound
	}
	return nil
}

func (s *RestStore) Delete(ctx context.Context, id string) error {
	var affected []entity.ProposalRow
	if err := s.do(ctx, http.MethodDelete, idFilter(id), nil, "return=representation", &affected); err != nil {
		return err
	}
	if len(affected) == 0 {
		return entity.ErrRowNotFound
	}
	return nil
}

func idFilter(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

func (s *RestStore) do(ctx context.Context, method string, query url.Values, payload any, prefer string, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, proposalsTable)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("erro ao gerar json: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	s.setHeaders(ctx, req, prefer)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro request supabase rest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("erro decode supabase rest: %w", err)
	}
	return nil
}

func (s *RestStore) setHeaders(ctx context.Context, req *http.Request, prefer string) {
	token := s.anonKey
	if session, ok := entity.SessionFromContext(ctx); ok && session.AccessToken != "" {
		token = session.AccessToken
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

func (s *RestStore) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	// 22P02: id que nem é uuid válido
	if apiErr.Code == "22P02" {
		return fmt.Errorf("%w: %v", entity.ErrRowNotFound, apiErr)
	}
	s.logger.Error("supabase rest recusou", "status", resp.StatusCode, "code", apiErr.Code, "message", apiErr.Message)
	return apiErr
}
