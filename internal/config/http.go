package config

const (
	HCType        = "Content-Type"
	HCacheControl = "Cache-Control"
	HConnection   = "Connection"
	HETag         = "ETag"
	HIfNoneMatch  = "If-None-Match"

	CTypeHTML        = "text/html"
	CTypeJSON        = "application/json"
	CTypeCSS         = "text/css"
	CTypeEventStream = "text/event-stream"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	QueryPageKey = "page_key"
)
