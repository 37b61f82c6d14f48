package auth

import (
	"time"

	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/google/uuid"
)

// Session is what a token stands for.
type Session struct {
	Admin   Admin
	Expires time.Time
}

// TokenStore issues opaque session tokens that expire after a fixed TTL.
type TokenStore struct {
	ttl      time.Duration
	sessions *cache.Cache[string, Session]
	now      func() time.Time
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStore{
		ttl:      ttl,
		sessions: cache.NewCache[string, Session](),
		now:      time.Now,
	}
}

func (s *TokenStore) Issue(admin Admin) (string, Session) {
	token := uuid.NewString()
	session := Session{Admin: admin, Expires: s.now().Add(s.ttl)}
	s.sessions.SetWithTTL(token, session, s.ttl)
	return token, session
}

func (s *TokenStore) Lookup(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}
	session, ok := s.sessions.Get(token)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	return session, nil
}

func (s *TokenStore) Revoke(token string) {
	s.sessions.Delete(token)
}

// Sweep drops expired sessions.
func (s *TokenStore) Sweep() int {
	return s.sessions.Sweep()
}
