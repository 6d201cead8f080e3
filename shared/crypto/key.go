package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// SigningKeyBytes is the amount of entropy in a generated token signing key.
const SigningKeyBytes = 64

// GenerateSigningKey returns a random HMAC key encoded as base64.
func GenerateSigningKey() (string, error) {
	key := make([]byte, SigningKeyBytes)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
