// Package routes defines HTTP route constants shared by the comment server and
// the composer's transport.
package routes

const (
	// Composer API
	APIUserGet    = "/api/user/get"
	APICommentAdd = "/api/comment/add"
	APIComments   = "/api/comments"
	APINotifyRead = "/api/notify/read"

	// Preview
	PartialsPreview = "/partials/preview"
	SyntaxThemeCSS  = "/syntax-theme/{theme}"

	// SSE
	SSEPath = "/sse"

	// Auth routes
	AuthChallenge = "/auth/challenge"
	AuthVerify    = "/auth/verify"

	RootPath = "/"
)

// Query parameters
const (
	QueryNick  = "nick"
	QueryEmail = "email"
)
