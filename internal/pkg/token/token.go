package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New generates a cryptographically random hex token of 2*n characters.
func New(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewClientID returns a 20-character OAuth client identifier.
func NewClientID() (string, error) { return New(10) }

// NewClientSecret returns a 64-character OAuth client secret.
func NewClientSecret() (string, error) { return New(32) }
