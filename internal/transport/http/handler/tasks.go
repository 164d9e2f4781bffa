package handler

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/task"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// TaskHandler serves the mobile task endpoints.
type TaskHandler struct {
	svc task.Service
}

func NewTaskHandler(svc task.Service) *TaskHandler { return &TaskHandler{svc: svc} }

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req domain.EditTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Edit(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.Filter(r.Context(), task.FilterParams{
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		Importance: q.Get("importance"),
		Status:     q.Get("status"),
		Limit:      queryInt(r, "limit"),
		Page:       queryInt(r, "page"),
		OrderBy:    q.Get("order_by"),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TaskHandler) Home(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Home(r.Context(), queryInt(r, "limit"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *TaskHandler) Buckets(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Buckets(r.Context(), queryInt(r, "min_each"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
