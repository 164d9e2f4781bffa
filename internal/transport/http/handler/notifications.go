package handler

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/notification"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the portal notification feed and its legacy
// and log-only variants.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListPortal(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	items, err := h.svc.ListPortal(r.Context(), user, queryInt(r, "limit"), queryBool(r, "include_legacy", true))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// UnseenCount also serves the unread-count alias.
func (h *NotificationHandler) UnseenCount(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnseenCount(r.Context(), user)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkPortalSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req domain.MarkSeenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MarkPortalSeen(r.Context(), user, chi.URLParam(r, "name"), req.Source); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.OKResult{OK: true})
}

func (h *NotificationHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	logs, err := h.svc.ListLogs(r.Context(), user, queryInt(r, "limit"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *NotificationHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkSeen(r.Context(), user, chi.URLParam(r, "name")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.OKResult{OK: true})
}

func (h *NotificationHandler) ListLegacy(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	items, err := h.svc.GetNotifications(r.Context(), user)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req domain.MarkReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MarkAsRead(r.Context(), user, req.Doc); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.OKResult{OK: true})
}
