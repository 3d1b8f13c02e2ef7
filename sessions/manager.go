package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/ums-portal/internal/config"
	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/rs/zerolog/log"
)

const sessionIDLength = 32

// Manager is the only component that reads or writes the credential store.
// Everything else sees the request scoped *Session it injects.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:      store,
		cookieName: cfg.GetSessionCookieName(),
		ttl:        cfg.GetSessionTTL(),
		now:        time.Now,
	}
}

// Load returns the session referenced by the request cookie. A missing cookie,
// an unknown id or a store failure all yield an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	key := storeKey(cookie.Value)
	record, err := m.store.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			log.Err(err).Msg("Failed to load session")
		}
		return &Session{}
	}
	if record.Expired(m.now()) {
		return &Session{}
	}
	return &Session{key: key, record: record}
}

// Begin stores a freshly issued credential under a new session id and sets the
// session cookie. Any session the browser already had is discarded first.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request, cred Credential, user users.User, accessExpiry time.Time) (*Session, error) {
	if cred.AccessToken == "" {
		return nil, fmt.Errorf("[sessions Begin] %w: empty access token", apperrors.ErrInvalidCredentials)
	}

	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		if err := m.store.Delete(r.Context(), storeKey(cookie.Value)); err != nil {
			log.Err(err).Msg("Failed to delete previous session")
		}
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("[sessions Begin] %w", err)
	}

	now := m.now()
	record := Record{
		Credential:   cred,
		User:         user,
		AccessExpiry: accessExpiry,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}

	key := storeKey(sessionID)
	if err := m.store.Upsert(r.Context(), key, record); err != nil {
		return nil, fmt.Errorf("[sessions Begin] failed to store session: %w", err)
	}

	m.setCookie(w, r, sessionID, int(m.ttl.Seconds()))
	return &Session{key: key, record: record}, nil
}

// End deletes the stored credential and expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	m.setCookie(w, r, "", -1)

	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if err := m.store.Delete(r.Context(), storeKey(cookie.Value)); err != nil {
		return fmt.Errorf("[sessions End] %w", err)
	}
	return nil
}

// UpdateCredential replaces the tokens of an existing session, typically after
// a refresh. An empty refresh token keeps the one already stored.
func (m *Manager) UpdateCredential(ctx context.Context, s *Session, cred Credential, accessExpiry time.Time) error {
	if s == nil || s.key == "" {
		return apperrors.ErrSessionNotFound
	}

	record := s.record
	record.AccessToken = cred.AccessToken
	if cred.RefreshToken != "" {
		record.RefreshToken = cred.RefreshToken
	}
	record.AccessExpiry = accessExpiry

	if err := m.store.Upsert(ctx, s.key, record); err != nil {
		return fmt.Errorf("[sessions UpdateCredential] %w", err)
	}
	s.record = record
	return nil
}

// Middleware loads the session once and attaches it to the request context.
func (m *Manager) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := m.Load(r)
		next(w, r.WithContext(NewContext(r.Context(), s)))
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
