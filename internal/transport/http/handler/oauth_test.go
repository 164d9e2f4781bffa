package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm-mobile-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOAuthConfig_PassesBothHostHeaders(t *testing.T) {
	svc := &mockOAuthSvc{}
	svc.On("GetConfig", mock.Anything, "crm.example.com, proxy.internal", "10.0.0.5:8080").Return(&domain.OAuthConfig{
		ClientID: "abc123", Scope: domain.OAuthDefaultScope, RedirectURI: domain.OAuthDefaultRedirectURI,
	}, nil)
	h := NewOAuthHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/oauth/config", nil)
	r.Host = "10.0.0.5:8080"
	r.Header.Set("X-Forwarded-Host", "crm.example.com, proxy.internal")
	rr := httptest.NewRecorder()
	h.Config(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"client_id":"abc123","scope":"all openid","redirect_uri":"app.trust://oauth2redirect"}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestOAuthConfig_UntrustedHost(t *testing.T) {
	svc := &mockOAuthSvc{}
	svc.On("GetConfig", mock.Anything, "", "evil.example.net").
		Return(nil, fmt.Errorf("host %q is not allowed: %w", "evil.example.net", domain.ErrForbidden))
	h := NewOAuthHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/oauth/config", nil)
	r.Host = "evil.example.net"
	rr := httptest.NewRecorder()
	h.Config(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, rr.Body.String(), "client_id")
}

func TestOAuthBootstrap(t *testing.T) {
	svc := &mockOAuthSvc{}
	svc.On("Bootstrap", mock.Anything).Return(&domain.BootstrapResult{OK: true, Site: "crm.local", ClientID: "abc123"}, nil)
	h := NewOAuthHandler(svc)

	rr := httptest.NewRecorder()
	h.Bootstrap(rr, asUser(httptest.NewRequest(http.MethodPost, "/v1/oauth/bootstrap", nil), domain.UserAdministrator))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"site":"crm.local","client_id":"abc123"}`, rr.Body.String())
}
