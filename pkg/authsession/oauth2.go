package authsession

import (
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Manager)(nil)

// Token implements oauth2.TokenSource so the Manager can back an
// oauth2.Transport. It reports the current bearer token only and never
// triggers a renewal; Expiry is taken from the JWT exp claim when present.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()

	if s.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}

	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
	}
	if exp, ok := tokenExpiry(s.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok, nil
}
