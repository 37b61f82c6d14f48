// Package api is the HTTP transport between the composer and the comment
// server.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/routes"
	"github.com/rs/zerolog"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// Response is the envelope of every API reply.
type Response struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error is a failure reported by the server.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Msg)
}

// ServerMessage is the text the server asked to show the user.
func (e *Error) ServerMessage() string {
	return e.Msg
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ChallengeResponse carries a base64 challenge to sign.
type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}

// TokenResponse carries the session token issued after a verified login.
type TokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// MarkReadRequest is the body of the notify read call.
type MarkReadRequest struct {
	Email string  `json:"email"`
	IDs   []int64 `json:"ids,omitempty"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTokenSource sets where the client reads the session token sent with
// every request.
func WithTokenSource(f func() string) Option {
	return func(c *Client) { c.token = f }
}

func WithHeaderName(name string) Option {
	return func(c *Client) { c.headerName = name }
}

type Client struct {
	baseURL    string
	http       *http.Client
	headerName string
	token      func() string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		headerName: "Authorization",
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, header http.Header, out any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}
	if token := c.token(); token != "" {
		req.Header.Set(c.headerName, token)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	apiLogger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API call")

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode >= 300 {
			return &Error{Status: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !envelope.Success {
		msg := envelope.Msg
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Msg: msg}
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// LookupIdentity asks the server who nick and email belong to.
func (c *Client) LookupIdentity(ctx context.Context, nick, email string) (*model.IdentityResult, error) {
	query := url.Values{}
	query.Set(routes.QueryNick, nick)
	query.Set(routes.QueryEmail, email)

	var res model.IdentityResult
	if err := c.do(ctx, http.MethodGet, routes.APIUserGet, query, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateComment(ctx context.Context, payload model.CommentPayload) (*model.Comment, error) {
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, routes.APICommentAdd, nil, payload, nil, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) ListComments(ctx context.Context, pageKey string) ([]model.Comment, error) {
	query := url.Values{}
	query.Set(config.QueryPageKey, pageKey)

	var comments []model.Comment
	if err := c.do(ctx, http.MethodGet, routes.APIComments, query, nil, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) MarkRead(ctx context.Context, email string, ids ...int64) error {
	return c.do(ctx, http.MethodPost, routes.APINotifyRead, nil, MarkReadRequest{Email: email, IDs: ids}, nil, nil)
}

// Challenge fetches the bytes an administrator must sign to log in.
func (c *Client) Challenge(ctx context.Context) ([]byte, error) {
	var res ChallengeResponse
	if err := c.do(ctx, http.MethodGet, routes.AuthChallenge, nil, nil, nil, &res); err != nil {
		return nil, err
	}
	challenge, err := base64.StdEncoding.DecodeString(res.Challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}
	return challenge, nil
}

// VerifyAdmin exchanges a signed challenge for a session token.
func (c *Client) VerifyAdmin(ctx context.Context, signature []byte) (string, error) {
	header := http.Header{}
	header.Set(c.headerName, base64.StdEncoding.EncodeToString(signature))

	var res TokenResponse
	if err := c.do(ctx, http.MethodPost, routes.AuthVerify, nil, nil, header, &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", errors.New("server returned an empty token")
	}
	return res.Token, nil
}
