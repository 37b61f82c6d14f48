package auth

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/debemdeboas/archive-comments/internal/api"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/rs/zerolog"
)

// Ed25519ChallengeHandler serves the current challenge on GET and replaces it
// on POST.
func Ed25519ChallengeHandler(provider *Ed25519Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())
		switch r.Method {
		case http.MethodGet:
		case http.MethodPost:
			if err := provider.RefreshChallenge(); err != nil {
				l.Error().Err(err).Msg("Failed to refresh challenge")
				api.WriteError(w, http.StatusInternalServerError, config.ErrRefreshChallengeFmt)
				return
			}
		default:
			api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
			return
		}

		api.WriteData(w, http.StatusOK, api.ChallengeResponse{
			Challenge: base64.StdEncoding.EncodeToString(provider.GetChallenge()),
		})
	}
}

// Ed25519VerifyHandler exchanges a base64 signature of the current challenge,
// sent in the provider's header, for a session token.
func Ed25519VerifyHandler(provider *Ed25519Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
			return
		}

		authHeader := strings.TrimSpace(r.Header.Get(provider.headerName))
		if authHeader == "" {
			api.WriteError(w, http.StatusUnauthorized, config.ErrAuthHeaderRequired)
			return
		}

		signature, err := base64.StdEncoding.DecodeString(authHeader)
		if err != nil {
			authLogger.Warn().Err(err).Msg("Failed to decode signature")
			api.WriteError(w, http.StatusUnauthorized, config.ErrInvalidSignatureFormat)
			return
		}

		token, session, err := provider.Verify(signature)
		if errors.Is(err, ErrInvalidSignature) {
			authLogger.Warn().Msg("Signature verification failed")
			api.WriteError(w, http.StatusUnauthorized, config.ErrInvalidSignature)
			return
		}
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, config.ErrInternalServerError)
			return
		}

		api.WriteData(w, http.StatusOK, api.TokenResponse{Token: token, Expires: session.Expires.Unix()})
	}
}
