package auth

import (
	"net/http"

	"github.com/debemdeboas/archive-comments/internal/routes"
)

// RegisterEd25519AuthRoutes registers the administrator login endpoints.
func RegisterEd25519AuthRoutes(mux *http.ServeMux, provider *Ed25519Provider) {
	mux.HandleFunc(routes.AuthChallenge, Ed25519ChallengeHandler(provider))
	mux.HandleFunc(routes.AuthVerify, Ed25519VerifyHandler(provider))
}
