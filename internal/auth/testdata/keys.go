package testdata

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
)

// Test Ed25519 public key for parsing tests only
// DO NOT USE IN PRODUCTION
const TestPublicKeyPEM = `-----BEGIN PUBLIC KEY-----
MCowBQYDK2VwAyEAfnFj+XvGh8tXwcDcw8gGblS+7rnWn65V1RNajNg0CC4=
-----END PUBLIC KEY-----`

const TestAdminNick = "ana"
const TestAdminEmail = "ana@example.com"

// NewKeyPair generates a fresh key pair and returns the PEM encoded public
// half alongside the private key.
func NewKeyPair(t testing.TB) (string, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), priv
}
