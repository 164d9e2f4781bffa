package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm-mobile-api/internal/domain"
	jwtinfra "github.com/crm-mobile-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
)

func withClaims(claims *jwtinfra.Claims) *http.Request {
	ctx := context.WithValue(context.Background(), ClaimsKey, claims)
	return httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
}

func TestRequireRole_NoClaimsInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSystemManager)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	req := withClaims(&jwtinfra.Claims{UserID: "jane@example.com", Roles: []string{domain.RoleSalesUser}})
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSystemManager)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireRole_CorrectRole(t *testing.T) {
	req := withClaims(&jwtinfra.Claims{UserID: "boss@example.com", Roles: []string{domain.RoleSalesUser, domain.RoleSystemManager}})
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSystemManager)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_MultipleAllowedRoles(t *testing.T) {
	req := withClaims(&jwtinfra.Claims{UserID: "lead@example.com", Roles: []string{domain.RoleSalesManager}})
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSystemManager, domain.RoleSalesManager)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRole_AdministratorAlwaysPasses(t *testing.T) {
	req := withClaims(&jwtinfra.Claims{UserID: domain.UserAdministrator})
	rr := httptest.NewRecorder()
	RequireRole(domain.RoleSystemManager)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
