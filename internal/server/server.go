// Package server is the reference comment backend the composer talks to:
// identity lookup, comment creation, unread reply notifies, live updates over
// SSE and the Markdown preview partial.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/debemdeboas/archive-comments/internal/auth"
	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/repository"
	"github.com/debemdeboas/archive-comments/internal/routes"
	"github.com/debemdeboas/archive-comments/internal/sse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var serverLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	serverLogger = l
}

const (
	maxBodyBytes = 64 << 10
	limiterTTL   = 10 * time.Minute
)

type Options struct {
	Comments  repository.CommentRepository
	Directory auth.Directory

	// Provider enables the administrator login routes. Tokens is used on its
	// own when Provider is nil.
	Provider   *auth.Ed25519Provider
	Tokens     *auth.TokenStore
	HeaderName string

	CommentsPerMinute int
	Burst             int
	DefaultPageKey    string
}

type Server struct {
	comments  repository.CommentRepository
	directory auth.Directory
	provider  *auth.Ed25519Provider
	tokens    *auth.TokenStore

	headerName     string
	defaultPageKey string

	clients *sse.SSEClients

	limit    rate.Limit
	burst    int
	limiters *cache.Cache[string, *rate.Limiter]
}

func New(opts Options) *Server {
	s := &Server{
		comments:       opts.Comments,
		directory:      opts.Directory,
		provider:       opts.Provider,
		tokens:         opts.Tokens,
		headerName:     opts.HeaderName,
		defaultPageKey: opts.DefaultPageKey,
		clients:        sse.NewSSEClients(),
		limit:          rate.Inf,
		burst:          opts.Burst,
		limiters:       cache.NewCache[string, *rate.Limiter](),
	}

	if s.directory == nil {
		s.directory = auth.StaticDirectory{}
	}
	if s.tokens == nil && s.provider != nil {
		s.tokens = s.provider.Tokens()
	}
	if s.tokens == nil {
		s.tokens = auth.NewTokenStore(0)
	}
	if s.headerName == "" {
		s.headerName = "Authorization"
	}
	if s.defaultPageKey == "" {
		s.defaultPageKey = routes.RootPath
	}
	if opts.CommentsPerMinute > 0 {
		s.limit = rate.Every(time.Minute / time.Duration(opts.CommentsPerMinute))
	}
	if s.burst <= 0 {
		s.burst = 1
	}

	s.comments.SetInsertNotifier(s.broadcastComment)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.APIUserGet, s.handleUserGet)
	mux.HandleFunc(routes.APICommentAdd, s.handleCommentAdd)
	mux.HandleFunc(routes.APIComments, s.handleComments)
	mux.HandleFunc(routes.APINotifyRead, s.handleNotifyRead)
	mux.HandleFunc(routes.PartialsPreview, s.handlePreview)
	mux.HandleFunc(routes.SyntaxThemeCSS, s.handleSyntaxTheme)
	mux.HandleFunc(routes.SSEPath, s.handleEvents)

	if s.provider != nil {
		auth.RegisterEd25519AuthRoutes(mux, s.provider)
	}

	return withRequestLogger(secureHeaders(auth.WithToken(s.tokens, s.headerName)(mux)))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info().Str("addr", addr).Msg("Comment server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	serverLogger.Info().Msg("Shutting down comment server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiters := s.limiters.Sweep()
			sessions := s.tokens.Sweep()
			serverLogger.Debug().Int("limiters", limiters).Int("sessions", sessions).Msg("Swept expired entries")
		}
	}
}

// allow reports whether the client at key may post another comment.
func (s *Server) allow(key string) bool {
	limiter, ok := s.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
	}
	s.limiters.SetWithTTL(key, limiter, limiterTTL)
	return limiter.Allow()
}

func (s *Server) broadcastComment(c model.Comment) {
	public := publicComment(c)
	msg, err := json.Marshal(public)
	if err != nil {
		serverLogger.Error().Err(err).Msg("Failed to encode comment for broadcast")
		return
	}
	sent := s.clients.Broadcast(c.PageKey, string(msg))
	serverLogger.Debug().Int64("id", int64(c.ID)).Int("clients", sent).Msg("Broadcast comment")
}

// publicComment strips what other readers must not see.
func publicComment(c model.Comment) model.Comment {
	c.Email = ""
	return c
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func secureHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		h.ServeHTTP(w, r)
	})
}

func withRequestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := serverLogger.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		start := time.Now()
		h.ServeHTTP(w, r.WithContext(l.WithContext(r.Context())))
		l.Debug().Dur("elapsed", time.Since(start)).Msg("Request served")
	})
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
