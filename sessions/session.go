package sessions

import (
	"context"
	"time"

	"github.com/jrsteele09/ums-portal/users"
)

// Credential is the token pair issued by the UMS API at login.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Record is what a Store keeps for one browser session.
type Record struct {
	Credential
	User         users.User `json:"user"`          // Snapshot taken at login, display only
	AccessExpiry time.Time  `json:"access_expiry"` // Read unverified from the access token, zero if unknown
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"` // Store lifetime, not token lifetime
}

// Expired reports whether the record outlived its store lifetime.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Session is the request scoped view of the credential store. Handlers receive
// it from the request context and only read from it; writes go through Manager.
type Session struct {
	key    string
	record Record
}

func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.record.AccessToken
}

func (s *Session) RefreshToken() string {
	if s == nil {
		return ""
	}
	return s.record.RefreshToken
}

func (s *Session) AccessExpiry() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.record.AccessExpiry
}

func (s *Session) User() users.User {
	if s == nil {
		return users.User{}
	}
	return s.record.User
}

// Authenticated is true when an access token is cached. It says nothing about
// whether the API would still accept that token.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session loaded by Manager.Middleware, or an empty
// session when none is attached. It never returns nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
