package handlers

import (
	"context"
	"net/http"
)

type FollowUpReporter interface {
	Execute(ctx context.Context) (int, error)
}

type ReportHandler struct {
	Digest FollowUpReporter
}

func NewReportHandler(digest FollowUpReporter) *ReportHandler {
	return &ReportHandler{Digest: digest}
}

type ReportResponse struct {
	Sent int `json:"sent"`
}

func (h *ReportHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	sent, err := h.Digest.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Sent: sent})
}
