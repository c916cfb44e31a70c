package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/logger"
)

const maxResponseBody = 1 << 20

var _ authsession.Backend = (*Client)(nil)

// Client implements authsession.Backend over the JSON auth API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. It returns ErrInvalidBaseURL when cfg.BaseURL is not
// an absolute http or https URL.
func New(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, fmt.Errorf("%q", cfg.BaseURL))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("authapi"))
	return c, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse accepts the field names used by common token endpoints.
type tokenResponse struct {
	Token        string            `json:"token"`
	AccessToken  string            `json:"access_token"`
	Access       string            `json:"access"`
	RefreshToken string            `json:"refresh_token"`
	Refresh      string            `json:"refresh"`
	User         *authsession.User `json:"user"`
}

func (r tokenResponse) access() string {
	return firstNonEmpty(r.Token, r.AccessToken, r.Access)
}

func (r tokenResponse) refresh() string {
	return firstNonEmpty(r.RefreshToken, r.Refresh)
}

// profileResponse accepts the user either at the top level or under "user".
type profileResponse struct {
	authsession.User
	Nested *authsession.User `json:"user"`
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, creds authsession.Credentials) (authsession.LoginResult, error) {
	var out tokenResponse
	status, err := c.do(ctx, "login", http.MethodPost, c.cfg.LoginPath, "",
		loginRequest{Username: creds.Username, Password: creds.Password}, &out)
	if err != nil {
		return authsession.LoginResult{}, err
	}
	if status != nil {
		switch status.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return authsession.LoginResult{}, errors.Join(authsession.ErrInvalidCredentials, status)
		default:
			return authsession.LoginResult{}, errors.Join(authsession.ErrBackendUnavailable, status)
		}
	}

	if out.access() == "" || out.User == nil {
		return authsession.LoginResult{}, errors.Join(authsession.ErrBackendUnavailable,
			errors.New("authapi: login: response has no token or user"))
	}
	return authsession.LoginResult{
		AccessToken:  out.access(),
		RefreshToken: out.refresh(),
		User:         *out.User,
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (authsession.RefreshResult, error) {
	var out tokenResponse
	status, err := c.do(ctx, "refresh", http.MethodPost, c.cfg.RefreshPath, "",
		refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return authsession.RefreshResult{}, err
	}
	if status != nil {
		switch status.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return authsession.RefreshResult{}, errors.Join(authsession.ErrSessionExpired, status)
		default:
			return authsession.RefreshResult{}, errors.Join(authsession.ErrBackendUnavailable, status)
		}
	}

	if out.access() == "" {
		return authsession.RefreshResult{}, errors.Join(authsession.ErrBackendUnavailable,
			errors.New("authapi: refresh: response has no token"))
	}
	return authsession.RefreshResult{AccessToken: out.access(), RefreshToken: out.refresh()}, nil
}

// Profile fetches the user the access token belongs to.
func (c *Client) Profile(ctx context.Context, accessToken string) (authsession.User, error) {
	var out profileResponse
	status, err := c.do(ctx, "profile", http.MethodGet, c.cfg.ProfilePath, accessToken, nil, &out)
	if err != nil {
		return authsession.User{}, err
	}
	if status != nil {
		switch status.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return authsession.User{}, errors.Join(authsession.ErrUnauthorized, status)
		default:
			return authsession.User{}, errors.Join(authsession.ErrBackendUnavailable, status)
		}
	}

	user := out.User
	if out.Nested != nil {
		user = *out.Nested
	}
	if user.Username == "" && user.ID == 0 {
		return authsession.User{}, errors.Join(authsession.ErrBackendUnavailable,
			errors.New("authapi: profile: response has no user"))
	}
	return user, nil
}

// Logout asks the server to revoke the access token. Without a configured
// LogoutPath it does nothing.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if c.cfg.LogoutPath == "" {
		return nil
	}
	status, err := c.do(ctx, "logout", http.MethodPost, c.cfg.LogoutPath, accessToken, nil, nil)
	if err != nil {
		return err
	}
	if status != nil {
		return errors.Join(authsession.ErrBackendUnavailable, status)
	}
	return nil
}

// do sends one request. A non-2xx answer is returned as *StatusError with a
// nil error; transport and decoding failures are returned as classified
// errors.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (*StatusError, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("authapi: %s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("authapi: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", logger.Event(op), logger.Error(err))
		return nil, errors.Join(authsession.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, errors.Join(authsession.ErrNetworkUnavailable, err)
	}

	c.logger.DebugContext(ctx, "request completed", logger.Event(op),
		logger.Method(method), logger.StatusCode(resp.StatusCode), logger.Duration(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}, nil
	}

	if out == nil {
		return nil, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, errors.Join(authsession.ErrBackendUnavailable,
			fmt.Errorf("authapi: %s: decode response: %w", op, err))
	}
	return nil, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// errorMessage extracts a server-provided reason from a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Detail         string   `json:"detail"`
		Message        string   `json:"message"`
		Error          string   `json:"error"`
		NonFieldErrors []string `json:"non_field_errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if len(body.NonFieldErrors) > 0 {
		return strings.Join(body.NonFieldErrors, ", ")
	}
	return firstNonEmpty(body.Detail, body.Message, body.Error)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
