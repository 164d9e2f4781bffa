package handler

import (
	"net/http"

	"github.com/crm-mobile-api/internal/application/oauth"
)

// OAuthHandler serves the guest mobile OAuth config and the admin bootstrap.
type OAuthHandler struct {
	svc oauth.Service
}

func NewOAuthHandler(svc oauth.Service) *OAuthHandler { return &OAuthHandler{svc: svc} }

func (h *OAuthHandler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfig(r.Context(), r.Header.Get("X-Forwarded-Host"), r.Host)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *OAuthHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Bootstrap(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
