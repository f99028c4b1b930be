package handlers

import (
	"net/http"
	"time"

	"github.com/xavierca1/proposal-control/internal/usecase"
)

type DashboardHandler struct {
	Source usecase.SnapshotSource
	Now    func() time.Time
}

func NewDashboardHandler(source usecase.SnapshotSource) *DashboardHandler {
	return &DashboardHandler{Source: source, Now: time.Now}
}

func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, usecase.Summarize(h.Source.Snapshot().Proposals, h.Now()))
}
