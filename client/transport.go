package client

import (
	"net/http"
	"strings"
)

// identityTransport attaches the X-User-Id header from the session store to
// every outgoing request except the authentication endpoints.
type identityTransport struct {
	base     http.RoundTripper
	sessions *SessionStore
}

func newIdentityTransport(sessions *SessionStore, base http.RoundTripper) *identityTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &identityTransport{base: base, sessions: sessions}
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Path, "/auth/") {
		return t.base.RoundTrip(req)
	}

	session, ok := t.sessions.Current()
	if !ok {
		return t.base.RoundTrip(req)
	}

	cloned := req.Clone(req.Context())
	cloned.Header.Set("X-User-Id", session.UserID)
	return t.base.RoundTrip(cloned)
}
