package requestid

import (
	"net/http"
	"regexp"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Transport sets the X-Request-ID header on every request that lacks one.
type Transport struct {
	base http.RoundTripper
}

// NewTransport wraps base; nil means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(Header) != "" {
		return t.base.RoundTrip(req)
	}

	id := FromContext(req.Context())
	if !isValid(id) {
		id = New()
	}

	out := req.Clone(req.Context())
	out.Header.Set(Header, id)
	return t.base.RoundTrip(out)
}

func isValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
