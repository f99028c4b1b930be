package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/proposal-control/internal/entity"
	"github.com/xavierca1/proposal-control/internal/usecase"
)

// ProposalService é a parte do RecordSynchronizer usada pela apresentação.
type ProposalService interface {
	Snapshot() usecase.Snapshot
	LoadAll(ctx context.Context) ([]entity.Proposal, error)
	Create(ctx context.Context, draft entity.ProposalData) error
	Update(ctx context.Context, p entity.Proposal) error
	Delete(ctx context.Context, id string) error
	Writing() bool
}

type ProposalHandler struct {
	Sync ProposalService
}

func NewProposalHandler(sync ProposalService) *ProposalHandler {
	return &ProposalHandler{Sync: sync}
}

// SnapshotResponse é a coleção atual mais os indicadores de carregamento.
type SnapshotResponse struct {
	usecase.Snapshot
	Writing bool `json:"writing"`
}

func (h *ProposalHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, http.StatusOK)
}

func (h *ProposalHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Sync.LoadAll(r.Context()); err != nil {
		writeUseCaseError(w, err)
		return
	}
	h.writeSnapshot(w, http.StatusOK)
}

func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft entity.ProposalData
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	if err := h.Sync.Create(r.Context(), draft); err != nil {
		writeUseCaseError(w, err)
		return
	}
	h.writeSnapshot(w, http.StatusCreated)
}

// Update substitui todos os campos; opcionais omitidos no corpo ficam ausentes.
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var data entity.ProposalData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	p := entity.Proposal{ID: chi.URLParam(r, "id"), ProposalData: data}
	if err := h.Sync.Update(r.Context(), p); err != nil {
		writeUseCaseError(w, err)
		return
	}
	h.writeSnapshot(w, http.StatusOK)
}

func (h *ProposalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Sync.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, err)
		return
	}
	h.writeSnapshot(w, http.StatusOK)
}

func (h *ProposalHandler) writeSnapshot(w http.ResponseWriter, status int) {
	writeJSON(w, status, SnapshotResponse{Snapshot: h.Sync.Snapshot(), Writing: h.Sync.Writing()})
}
