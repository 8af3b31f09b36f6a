package suiai

import (
	"SuiAI-SDK/internal/keys"

	"github.com/google/uuid"
)

// IdentityFromMnemonic derives the identity at m/44'/784'/0'/0'/0'.
func IdentityFromMnemonic(phrase string) (*Identity, error) {
	return keys.FromMnemonic(phrase)
}

// IdentityFromSecretKey decodes a base64 ed25519 secret key.
func IdentityFromSecretKey(encoded string) (*Identity, error) {
	return keys.FromSecretKey(encoded)
}

// NewRequestID returns a random request id suitable for ExecutionContext.
func NewRequestID() string {
	return uuid.NewString()
}
