package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/domain"
	jwtinfra "github.com/crm-mobile-api/internal/infrastructure/jwt"
	"github.com/crm-mobile-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given user and roles.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID string, roles []string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, roles, "sess1")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// asUser injects claims for userID directly, skipping token signing.
func asUser(r *http.Request, userID string) *http.Request {
	claims := &jwtinfra.Claims{UserID: userID}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func TestHTTPError_MapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("task TASK-9: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("Status is required: %w", domain.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("you are not allowed to assign: %w", domain.ErrForbidden), http.StatusForbidden},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("client id taken: %w", domain.ErrConflict), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.code, rr.Code, tc.err.Error())
	}
}

func TestHTTPError_HidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))
	assert.JSONEq(t, `{"error":"internal server error","error_code":500}`, rr.Body.String())
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?a=1&b=0&c=yes&d=junk", nil)
	assert.True(t, queryBool(r, "a", false))
	assert.False(t, queryBool(r, "b", true))
	assert.True(t, queryBool(r, "c", false))
	assert.False(t, queryBool(r, "d", true))
	assert.True(t, queryBool(r, "missing", true))
}
