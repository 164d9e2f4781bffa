package jwtinfra_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/crm-mobile-api/internal/config"
	jwtinfra "github.com/crm-mobile-api/internal/infrastructure/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T) (privPath, pubPath string, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.pem")
	pubPath = filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0600))
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), 0600))
	return privPath, pubPath, key
}

func TestProvider_SignVerifyRoundTrip(t *testing.T) {
	priv, pub, _ := writeKeys(t)
	p, err := jwtinfra.NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	require.NoError(t, err)

	token, err := p.Sign("jane@example.com", []string{"Sales User", "Sales Manager"}, "sess-1")
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.UserID)
	assert.Equal(t, []string{"Sales User", "Sales Manager"}, claims.Roles)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestProvider_VerifyOnlyWithoutPrivateKey(t *testing.T) {
	_, pub, _ := writeKeys(t)
	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		JWTPublicKeyPath:  pub,
	})
	require.NoError(t, err)

	_, err = p.Sign("jane@example.com", nil, "")
	assert.Error(t, err)
}

func TestProvider_SubjectFallsBackToUserID(t *testing.T) {
	priv, pub, key := writeKeys(t)
	p, err := jwtinfra.NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   "idp-user@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "idp-user@example.com", claims.UserID)
}

func TestProvider_RejectsHMACTokens(t *testing.T) {
	priv, pub, _ := writeKeys(t)
	p, err := jwtinfra.NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "jane@example.com"})
	signed, err := token.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.Error(t, err)
}

func TestNewProvider_MissingPublicKey(t *testing.T) {
	_, err := jwtinfra.NewProvider(&config.Config{JWTPublicKeyPath: filepath.Join(t.TempDir(), "nope.pem")})
	assert.Error(t, err)
}
