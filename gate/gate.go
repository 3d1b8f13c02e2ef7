// Package gate decides whether a protected page may render for the current
// browser session.
//
// The gate is a presence check, not a trust boundary. It only asks whether an
// access token is cached for the session; it never verifies the token's
// signature, expiry or revocation and never calls the UMS API. A stale token
// gets past the gate and is rejected later by the API itself.
package gate

import (
	"net/http"
	"net/url"
	"strings"
)

// TokenSource exposes the cached access token of one browser session.
type TokenSource interface {
	AccessToken() string
}

// Decision is the outcome of a single gate check.
type Decision struct {
	Allow    bool
	Redirect string // login location, set only when Allow is false
}

// Gate guards protected handlers.
type Gate struct {
	loginPath string
	source    func(*http.Request) TokenSource
}

// New returns a gate redirecting to loginPath. source resolves the session of
// a request; it is injected so the gate carries no knowledge of where
// credentials live.
func New(loginPath string, source func(*http.Request) TokenSource) *Gate {
	return &Gate{
		loginPath: loginPath,
		source:    source,
	}
}

// Decide is the pure decision for a request to requested (a path with an
// optional query). It performs no I/O and does not modify src.
func (g *Gate) Decide(src TokenSource, requested string) Decision {
	if src != nil && src.AccessToken() != "" {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.loginURL(requested)}
}

// Wrap renders next unchanged when a token is present and otherwise answers
// with 303 See Other to the login page. Following a 303 replaces the blocked
// URL in the browser history, so Back does not return to it.
func (g *Gate) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(g.source(r), r.URL.RequestURI())
		if d.Allow {
			next(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
	}
}

func (g *Gate) loginURL(requested string) string {
	if !IsLocalPath(requested) || requested == "/" || UnderPath(requested, g.loginPath) {
		return g.loginPath
	}
	return g.loginPath + "?next=" + url.QueryEscape(requested)
}

// UnderPath reports whether p is base itself, base with a query, or a path
// below base. "/loginhistory" is not under "/login".
func UnderPath(p, base string) bool {
	return p == base || strings.HasPrefix(p, base+"?") || strings.HasPrefix(p, base+"/")
}

// IsLocalPath reports whether p is a same-origin absolute path, which is the
// only kind of post-login destination the portal follows.
func IsLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	// "//host" and "/\host" are treated by browsers as protocol relative URLs
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}
