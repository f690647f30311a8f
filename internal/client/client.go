// Package client is a typed HTTP client for the ledger API. It owns one
// viewing.Manager per client session and attaches the active target to every
// listing call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/viewing"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/web"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	// ErrReadOnly is returned without a request when a mutation is attempted
	// while viewing another member.
	ErrReadOnly = errors.New("read-only while viewing another member")
)

// APIError is a non-2xx response. It unwraps to one of the sentinel errors
// when the status has one.
type APIError struct {
	Status  int
	Message string
	Details []web.FieldError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Me is the signed-in principal as reported by the server.
type Me struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	Role            access.Role `json:"role"`
	CanSelectTarget bool        `json:"canSelectTarget"`
}

// Result is one listing response tagged with the viewUserId it was issued
// for, so callers can drop it if the target changed meanwhile.
type Result[T any] struct {
	ViewUserID string
	Data       T
	Pagination *web.Pagination
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	me    *Me
	view  *viewing.Manager
}

// New builds a client for baseURL authenticating with a session token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, token: token, http: &http.Client{Timeout: 15 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	c.view = viewing.New(c.selfID)
	return c, nil
}

func (c *Client) selfID() string {
	if c.me == nil {
		return ""
	}
	return c.me.ID
}

// Viewing exposes the session's viewing context.
func (c *Client) Viewing() *viewing.Manager {
	return c.view
}

// Identity returns the principal loaded by LoadIdentity, if any.
func (c *Client) Identity() (Me, bool) {
	if c.me == nil {
		return Me{}, false
	}
	return *c.me, true
}

// LoadIdentity fetches the principal. Until it succeeds the viewing context
// treats any target as someone else.
func (c *Client) LoadIdentity(ctx context.Context) (Me, error) {
	var me Me
	if _, err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, &me); err != nil {
		return Me{}, err
	}
	c.me = &me
	return me, nil
}

// SignOut revokes the client's session token.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil, nil)
	if err == nil {
		c.view.Reset()
		c.me = nil
	}
	return err
}

// scoped issues a listing request with the current viewUserId.
func scoped[T any](ctx context.Context, c *Client, path string, q url.Values) (Result[T], error) {
	if q == nil {
		q = url.Values{}
	}
	view := c.view.ViewUserID()
	if view != "" {
		q.Set(web.ViewUserParam, view)
	}
	var out Result[T]
	pg, err := c.do(ctx, http.MethodGet, path, q, nil, &out.Data)
	if err != nil {
		return Result[T]{}, err
	}
	out.ViewUserID = view
	out.Pagination = pg
	return out, nil
}

// mutate refuses to send while viewing someone else.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	if !c.view.CanMutate() {
		return ErrReadOnly
	}
	_, err := c.do(ctx, method, path, nil, body, out)
	return err
}

type envelope struct {
	Success    bool             `json:"success"`
	Data       json.RawMessage  `json:"data"`
	Pagination *web.Pagination  `json:"pagination"`
	Error      string           `json:"error"`
	Details    []web.FieldError `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) (*web.Pagination, error) {
	u := *c.base
	u.Path = c.base.Path + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Error, Details: env.Details}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Pagination, nil
}
