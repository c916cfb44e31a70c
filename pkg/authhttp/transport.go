package authhttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authclient/pkg/authsession"
	"github.com/dmitrymomot/authclient/pkg/logger"
)

// Session is the part of authsession.Manager the transport needs.
type Session interface {
	AccessToken() string
	CanRenew() bool
	Refresh(ctx context.Context) (string, error)
	// LogoutIfCurrent drops the session only while it still holds
	// accessToken and reports whether it did.
	LogoutIfCurrent(ctx context.Context, accessToken string) bool
}

// ErrBodyNotReplayable is returned when a request body cannot be buffered.
var ErrBodyNotReplayable = errors.New("authhttp: request body cannot be replayed")

// Transport implements http.RoundTripper with token stamping and
// single-retry recovery from authentication rejections.
type Transport struct {
	session  Session
	base     http.RoundTripper
	rejected func(*http.Response) bool
	logger   *slog.Logger
}

// NewTransport wraps the base transport with session handling.
func NewTransport(session Session, opts ...Option) *Transport {
	t := &Transport{
		session:  session,
		base:     http.DefaultTransport,
		rejected: isUnauthorized,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(logger.Component("authhttp"))
	return t
}

// NewClient returns an http.Client that uses a Transport.
func NewClient(session Session, opts ...Option) *http.Client {
	return &http.Client{Transport: NewTransport(session, opts...)}
}

func isUnauthorized(resp *http.Response) bool {
	return resp.StatusCode == http.StatusUnauthorized
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Work on a copy: RoundTrip must not modify the caller's request.
	req = req.Clone(ctx)
	if err := bufferBody(req); err != nil {
		return nil, err
	}

	token := t.session.AccessToken()
	resp, err := t.base.RoundTrip(stamp(req, token))
	if err != nil || !t.rejected(resp) {
		return resp, err
	}

	log := t.logger.With(logger.Method(req.Method), logger.URL(req.URL.Redacted()))

	if !t.session.CanRenew() {
		t.forceLogout(ctx, log, token, "request rejected without renewal credential")
		return resp, nil
	}

	// Another request may have renewed the token while this one was in flight.
	next := t.session.AccessToken()
	if next == "" || next == token {
		next, err = t.session.Refresh(ctx)
		if err != nil {
			drain(resp)
			switch {
			case ctx.Err() != nil:
				// Only this caller stopped waiting; the shared renewal goes on.
				log.DebugContext(ctx, "stopped waiting for renewal", logger.Error(err))
			case errors.Is(err, authsession.ErrSuperseded):
				log.InfoContext(ctx, "renewal outlived by a newer session", logger.Error(err))
			default:
				t.forceLogout(ctx, log, token, "renewal failed", logger.Error(err))
			}
			return nil, err
		}
	}

	drain(resp)
	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}

	resp, err = t.base.RoundTrip(stamp(retry, next))
	if err != nil {
		return nil, err
	}
	if t.rejected(resp) {
		t.forceLogout(ctx, log, next, "replayed request rejected", logger.StatusCode(resp.StatusCode))
	}
	return resp, nil
}

// forceLogout ends the session if it still holds the rejected token.
func (t *Transport) forceLogout(ctx context.Context, log *slog.Logger, token, msg string, attrs ...any) {
	if t.session.LogoutIfCurrent(ctx, token) {
		log.WarnContext(ctx, msg+", logged out", attrs...)
		return
	}
	log.InfoContext(ctx, msg+", session already changed", attrs...)
}

// stamp returns a copy of req carrying token as a bearer credential.
func stamp(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return out
}

// bufferBody makes the body replayable by installing GetBody.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return errors.Join(ErrBodyNotReplayable, err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.GetBody == nil {
		return out, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Join(ErrBodyNotReplayable, err)
	}
	out.Body = body
	return out, nil
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
