package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidSignature = errors.New("signature does not match the current challenge")

// ParsePublicKey decodes a PEM encoded PKIX Ed25519 public key.
func ParsePublicKey(publicKeyPEM string) (ed25519.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	publicKey, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 public key")
	}
	return publicKey, nil
}

// Ed25519Provider logs the administrator in by having them sign a random
// challenge with the private half of a configured key pair. A challenge is
// single use: it is replaced after every successful verification.
type Ed25519Provider struct {
	publicKey  ed25519.PublicKey
	headerName string
	admin      Admin
	tokens     *TokenStore

	mu        sync.Mutex
	challenge []byte
}

// NewEd25519Provider creates a provider issuing tokens for admin.
func NewEd25519Provider(publicKeyPEM, headerName string, admin Admin, tokens *TokenStore) (*Ed25519Provider, error) {
	publicKey, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	p := &Ed25519Provider{
		publicKey:  publicKey,
		headerName: headerName,
		admin:      admin,
		tokens:     tokens,
	}
	if err := p.RefreshChallenge(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Ed25519Provider) HeaderName() string {
	return p.headerName
}

func (p *Ed25519Provider) Tokens() *TokenStore {
	return p.tokens
}

// GetChallenge returns a copy of the challenge that needs to be signed.
func (p *Ed25519Provider) GetChallenge() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.challenge...)
}

// RefreshChallenge generates a new random challenge
func (p *Ed25519Provider) RefreshChallenge() error {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		authLogger.Error().Err(err).Msg("Failed to generate challenge")
		return fmt.Errorf("failed to generate challenge: %w", err)
	}

	p.mu.Lock()
	p.challenge = challenge
	p.mu.Unlock()
	return nil
}

// Verify checks signature against the current challenge and, if it matches,
// issues a session token for the administrator.
func (p *Ed25519Provider) Verify(signature []byte) (string, Session, error) {
	p.mu.Lock()
	ok := ed25519.Verify(p.publicKey, p.challenge, signature)
	p.mu.Unlock()
	if !ok {
		return "", Session{}, ErrInvalidSignature
	}

	if err := p.RefreshChallenge(); err != nil {
		authLogger.Warn().Err(err).Msg("Keeping used challenge")
	}

	token, session := p.tokens.Issue(p.admin)
	authLogger.Info().Str("nick", p.admin.Nick).Time("expires", session.Expires).Msg("Administrator logged in")
	return token, session, nil
}
