package identity

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	keyIDPrefix    = "ak_"
	keyIDBytes     = 12
	secretBytesLen = 32
)

// GenerateCredentials returns a fresh key identifier and shared secret drawn
// from crypto/rand. The secret is shown to the operator once and never again.
func GenerateCredentials() (keyID, secret string, err error) {
	idBytes := make([]byte, keyIDBytes)
	if _, err = rand.Read(idBytes); err != nil {
		return "", "", fmt.Errorf("generate key id: %w", err)
	}
	secretBytes := make([]byte, secretBytesLen)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", fmt.Errorf("generate secret: %w", err)
	}
	return keyIDPrefix + hex.EncodeToString(idBytes), base64.RawURLEncoding.EncodeToString(secretBytes), nil
}
