package handler

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/document"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// DocumentHandler serves visibility-filtered listings for one doctype.
// The router mounts one instance per doctype.
type DocumentHandler struct {
	svc     document.Service
	doctype string
}

func NewDocumentHandler(svc document.Service, doctype string) *DocumentHandler {
	return &DocumentHandler{svc: svc, doctype: doctype}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), user, h.doctype, document.ListParams{
		Filter: domain.DocumentFilter{
			Status: q.Get("status"),
			Owner:  q.Get("owner"),
			Search: q.Get("q"),
		},
		Limit: queryInt(r, "limit"),
		Page:  queryInt(r, "page"),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	doc, err := h.svc.Get(r.Context(), user, h.doctype, chi.URLParam(r, "name"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
