package handler

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/assignment"
	"github.com/crm-mobile-api/internal/domain"
)

// AssignmentHandler serves the assignment endpoints. All of them act on
// behalf of the session user; the policy decides what that user may do.
type AssignmentHandler struct {
	svc assignment.Service
}

func NewAssignmentHandler(svc assignment.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

func (h *AssignmentHandler) AssignableUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	users, err := h.svc.AssignableUsers(r.Context(), actor)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AssignmentHandler) AssignLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req domain.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AssignLead(r.Context(), actor, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AssignmentHandler) AddToDo(w http.ResponseWriter, r *http.Request) {
	actor, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req domain.AddAssignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	todos, err := h.svc.Add(r.Context(), actor, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, todos)
}
