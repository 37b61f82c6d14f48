// Package auth implements the administrator login behind the composer's
// checker-admin flow: an Ed25519 challenge exchanged for a session token, and
// the directory that decides who counts as an administrator.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/rs/zerolog"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var ErrInvalidToken = errors.New("invalid or expired token")

// Admin is an identity allowed to log in as administrator.
type Admin struct {
	UserID model.UserID
	Nick   string
	Email  string
}

// Matches reports whether nick and email name a, ignoring case and
// surrounding whitespace. An empty nick matches any nick.
func (a Admin) Matches(nick, email string) bool {
	if a.Email == "" || !strings.EqualFold(strings.TrimSpace(email), a.Email) {
		return false
	}
	nick = strings.TrimSpace(nick)
	return nick == "" || a.Nick == "" || strings.EqualFold(nick, a.Nick)
}

// Directory decides whether a commenter identity belongs to an administrator.
type Directory interface {
	IsAdmin(ctx context.Context, nick, email string) (bool, error)
}

// StaticDirectory knows a fixed set of administrators.
type StaticDirectory []Admin

func (d StaticDirectory) IsAdmin(_ context.Context, nick, email string) (bool, error) {
	for _, a := range d {
		if a.Matches(nick, email) {
			return true, nil
		}
	}
	return false, nil
}

// Directories consults each directory in order and stops at the first that
// reports an administrator.
type Directories []Directory

func (ds Directories) IsAdmin(ctx context.Context, nick, email string) (bool, error) {
	var errs []error
	for _, d := range ds {
		ok, err := d.IsAdmin(ctx, nick, email)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}
