package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrListCommentsFmt       = "Failed to list comments: %v"

	// Auth errors
	ErrCreateProviderFmt      = "Failed to create provider: %v"
	ErrAuthHeaderRequired     = "Authorization header required"
	ErrInvalidSignatureFormat = "Invalid signature format"
	ErrInvalidSignature       = "Invalid signature"
	ErrInternalServerError    = "Internal server error"
	ErrAdminLoginRequired     = "Administrator identity requires login"

	// Comment errors
	ErrEmptyContent    = "Content must not be empty"
	ErrMissingNickname = "Nickname and email are required"
	ErrInvalidPayload  = "Invalid comment payload"
	ErrReplyNotFound   = "Reply target not found"
	ErrRateLimited     = "rate limited"

	// Challenge errors
	ErrRefreshChallengeFmt = "Failed to refresh challenge"
)

const (
	ErrMissingEmail         = "Email is required"
	ErrStreamingUnsupported = "Streaming unsupported"
	ErrPageKeyRequired      = "page_key parameter required"
)
