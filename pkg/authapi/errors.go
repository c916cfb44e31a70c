package authapi

import (
	"errors"
	"fmt"
)

// ErrInvalidBaseURL indicates Config.BaseURL is not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("authapi: invalid base url")

// StatusError describes a non-2xx response. It is always joined with an
// authsession sentinel that classifies it.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authapi: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("authapi: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}
