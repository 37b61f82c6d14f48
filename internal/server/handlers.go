package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/debemdeboas/archive-comments/internal/api"
	"github.com/debemdeboas/archive-comments/internal/auth"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/render"
	"github.com/debemdeboas/archive-comments/internal/repository"
	"github.com/debemdeboas/archive-comments/internal/routes"
	"github.com/debemdeboas/archive-comments/internal/sse"
	"github.com/debemdeboas/archive-comments/internal/theme"
	"github.com/debemdeboas/archive-comments/internal/util"
	"github.com/rs/zerolog"
)

// loggedInAs reports whether the request carries a session for nick and email.
func loggedInAs(r *http.Request, nick, email string) bool {
	session, ok := auth.SessionFromContext(r.Context())
	return ok && session.Admin.Matches(nick, email)
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
		return
	}

	l := zerolog.Ctx(r.Context())
	nick := trimmed(r.URL.Query().Get(routes.QueryNick))
	email := trimmed(r.URL.Query().Get(routes.QueryEmail))

	result := model.IdentityResult{Unread: []model.Notify{}}
	if email == "" {
		api.WriteData(w, http.StatusOK, result)
		return
	}

	isAdmin, err := s.directory.IsAdmin(r.Context(), nick, email)
	if err != nil {
		l.Warn().Err(err).Msg("Administrator lookup failed")
	}
	user := &model.IdentityUser{Nick: nick, IsAdmin: isAdmin}

	latest, err := s.comments.LatestByEmail(email)
	switch {
	case err == nil:
		user.Link = latest.Link
		if user.Nick == "" {
			user.Nick = latest.Nick
		}
	case !errors.Is(err, repository.ErrCommentNotFound):
		l.Warn().Err(err).Msg("Failed to look up latest comment")
	}
	result.User = user

	unread, err := s.comments.UnreadNotifies(email)
	if err != nil {
		l.Warn().Err(err).Msg("Failed to list unread notifies")
	} else {
		result.Unread = unread
	}

	result.IsLogin = isAdmin && loggedInAs(r, nick, email)
	api.WriteData(w, http.StatusOK, result)
}

func (s *Server) handleCommentAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
		return
	}

	l := zerolog.Ctx(r.Context())

	if !s.allow(clientKey(r)) {
		l.Info().Str("client", clientKey(r)).Msg("Comment rate limited")
		api.WriteError(w, http.StatusTooManyRequests, config.ErrRateLimited)
		return
	}

	var payload model.CommentPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		api.WriteError(w, http.StatusBadRequest, config.ErrInvalidPayload)
		return
	}

	comment := model.Comment{
		Content: payload.Content,
		Nick:    trimmed(payload.Nick),
		Email:   trimmed(payload.Email),
		Link:    trimmed(payload.Link),
		RID:     payload.RID,
		PageKey: trimmed(payload.PageKey),
	}
	if trimmed(comment.Content) == "" {
		api.WriteError(w, http.StatusBadRequest, config.ErrEmptyContent)
		return
	}
	if comment.Nick == "" || comment.Email == "" {
		api.WriteError(w, http.StatusBadRequest, config.ErrMissingNickname)
		return
	}
	if comment.PageKey == "" {
		comment.PageKey = s.defaultPageKey
	}

	isAdmin, err := s.directory.IsAdmin(r.Context(), comment.Nick, comment.Email)
	if err != nil {
		l.Warn().Err(err).Msg("Administrator lookup failed")
	}
	if isAdmin && !loggedInAs(r, comment.Nick, comment.Email) {
		api.WriteError(w, http.StatusUnauthorized, config.ErrAdminLoginRequired)
		return
	}
	comment.IsAdmin = isAdmin

	if err := s.comments.Create(&comment); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			api.WriteError(w, http.StatusBadRequest, config.ErrReplyNotFound)
			return
		}
		l.Error().Err(err).Msg("Failed to create comment")
		api.WriteError(w, http.StatusInternalServerError, config.ErrInternalServerError)
		return
	}

	api.WriteData(w, http.StatusCreated, publicComment(comment))
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
		return
	}

	pageKey := trimmed(r.URL.Query().Get(config.QueryPageKey))
	if pageKey == "" {
		pageKey = s.defaultPageKey
	}

	comments, err := s.comments.List(pageKey)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list comments")
		api.WriteError(w, http.StatusInternalServerError, fmt.Sprintf(config.ErrListCommentsFmt, err))
		return
	}

	for i := range comments {
		comments[i] = publicComment(comments[i])
	}
	api.WriteData(w, http.StatusOK, comments)
}

func (s *Server) handleNotifyRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, config.HTTPErrMethodNotAllowed)
		return
	}

	var req api.MarkReadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, config.ErrInvalidPayload)
		return
	}
	email := trimmed(req.Email)
	if email == "" {
		api.WriteError(w, http.StatusBadRequest, config.ErrMissingEmail)
		return
	}

	if err := s.comments.MarkRead(email, req.IDs...); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to mark notifies as read")
		api.WriteError(w, http.StatusInternalServerError, config.ErrInternalServerError)
		return
	}
	api.WriteData(w, http.StatusOK, nil)
}

// handlePreview renders posted Markdown to an HTML fragment. With source=true
// the raw Markdown is highlighted instead.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	content := r.FormValue("content")
	syntaxTheme := theme.FromRequest(r)

	var htmlContent []byte
	if r.FormValue("source") == "true" {
		highlighted, err := render.HighlightSource(content, syntaxTheme)
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Falling back to escaped source")
		}
		htmlContent = []byte(highlighted)
	} else {
		htmlContent = render.RenderMarkdownCached([]byte(content), util.PreviewKey(content, render.Renderer), syntaxTheme)
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write(htmlContent)
}

func (s *Server) handleSyntaxTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	themeStyle := []byte(theme.GenerateSyntaxCSS(theme.Resolve(r.PathValue("theme"))))
	etag := util.ETag(themeStyle)
	w.Header().Set(config.HETag, etag)
	if r.Header.Get(config.HIfNoneMatch) == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

// handleEvents streams comments created on a page as they arrive.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	pageKey := trimmed(r.URL.Query().Get(config.QueryPageKey))
	if pageKey == "" {
		http.Error(w, config.ErrPageKeyRequired, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, config.ErrStreamingUnsupported, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set(config.HConnection, "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := sse.NewClient(pageKey)
	s.clients.Add(client)
	l.Debug().Str("page_key", pageKey).Msg("New SSE client connected")

	defer func() {
		s.clients.Delete(client)
		l.Debug().Str("page_key", pageKey).Msg("SSE client disconnected")
	}()

	done := r.Context().Done()
	for {
		select {
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: comment\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-done:
			return
		}
	}
}
