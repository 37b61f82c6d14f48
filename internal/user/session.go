// Package user holds the commenter profile shared by the composer and the
// widget around it.
package user

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/rs/zerolog"
)

var userLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	userLogger = l
}

// Store is the key/value slot the profile is persisted in.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Session guards the profile that header edits mutate in place.
type Session struct {
	mu      sync.RWMutex
	profile model.UserProfile

	store Store
	key   string
}

// NewSession loads the profile saved under key. A missing or unreadable slot
// starts an empty profile.
func NewSession(store Store, key string) *Session {
	s := &Session{store: store, key: key}
	if store == nil {
		return s
	}

	raw, ok, err := store.Get(key)
	if err != nil {
		userLogger.Warn().Err(err).Str("key", key).Msg("Failed to load profile")
		return s
	}
	if !ok || raw == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s.profile); err != nil {
		userLogger.Warn().Err(err).Str("key", key).Msg("Discarding malformed profile")
		s.profile = model.UserProfile{}
	}
	return s
}

func (s *Session) Profile() model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.IsAdmin
}

func (s *Session) HasBasicInfo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.HasBasicInfo()
}

// SetField stores the trimmed value and reports whether it changed. Changing
// the nick or email drops the token and admin flag.
func (s *Session) SetField(field model.ProfileField, value string) bool {
	value = strings.TrimSpace(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile.Get(field) == value {
		return false
	}

	switch field {
	case model.FieldNick:
		s.profile.Nick = value
	case model.FieldEmail:
		s.profile.Email = value
	case model.FieldLink:
		s.profile.Link = value
	default:
		return false
	}

	if field.Identifying() {
		s.profile.Token = ""
		s.profile.IsAdmin = false
	}
	return true
}

func (s *Session) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Token = ""
	s.profile.IsAdmin = false
}

func (s *Session) SetCredentials(token string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Token = token
	s.profile.IsAdmin = isAdmin
}

func (s *Session) SetLink(link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Link = strings.TrimSpace(link)
}

// Save writes the profile to its slot.
func (s *Session) Save() error {
	if s.store == nil {
		return nil
	}

	s.mu.RLock()
	data, err := json.Marshal(s.profile)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := s.store.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
