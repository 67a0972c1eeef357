package http

import (
	"net/http"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
	paging  Paging
}

func NewNotificationHandler(noteSvc service.NotificationService, paging Paging) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc, paging: paging}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := h.paging.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	notes, total, err := h.noteSvc.GetNotifications(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: notes, Total: total, Page: page, PageSize: pageSize})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims, _ := claimsFromContext(r.Context())

	if err := h.noteSvc.MarkAsRead(r.Context(), claims.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
