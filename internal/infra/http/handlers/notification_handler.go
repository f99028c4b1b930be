package handlers

import (
	"net/http"

	"github.com/xavierca1/proposal-control/internal/entity"
)

type NotificationSource interface {
	Drain() []entity.Notification
}

type NotificationHandler struct {
	Inbox NotificationSource
}

func NewNotificationHandler(inbox NotificationSource) *NotificationHandler {
	return &NotificationHandler{Inbox: inbox}
}

func (h *NotificationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Inbox.Drain())
}
