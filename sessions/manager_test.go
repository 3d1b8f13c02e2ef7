package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/ums-portal/users"
	"github.com/stretchr/testify/require"
)

const testCookie = "ums_session"

type testConfig struct{}

func (testConfig) GetSessionCookieName() string { return testCookie }
func (testConfig) GetSessionTTL() time.Duration { return time.Hour }
func (testConfig) GetSessionStore() string      { return "memory" }
func (testConfig) GetRedisAddress() string      { return "" }
func (testConfig) GetSQLitePath() string        { return "" }
func (testConfig) GetSweepSchedule() string     { return "@every 1m" }

func newTestManager() (*Manager, *InMemoryStore, *clock) {
	c := &clock{now: testNow}
	store := NewInMemoryStore()
	store.now = c.Now
	m := NewManager(store, testConfig{})
	m.now = c.Now
	return m, store, c
}

// begin logs a user in and returns the cookie the browser would send back.
func begin(t *testing.T, m *Manager, access, refresh string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	_, err := m.Begin(w, r, Credential{AccessToken: access, RefreshToken: refresh}, users.User{FirstName: "Alice", Role: users.RoleAdmin}, time.Time{})
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	return r
}

func TestManager_BeginAndLoad(t *testing.T) {
	m, store, _ := newTestManager()
	cookie := begin(t, m, "t1", "r1")

	require.Equal(t, testCookie, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 3600, cookie.MaxAge)
	require.Equal(t, 1, store.Len())

	_, err := store.Get(context.Background(), cookie.Value)
	require.Error(t, err, "raw cookie value must not be a store key")

	s := m.Load(requestWith(cookie))
	require.True(t, s.Authenticated())
	require.Equal(t, "t1", s.AccessToken())
	require.Equal(t, "r1", s.RefreshToken())
	require.Equal(t, "Alice", s.User().FirstName)
}

func TestManager_BeginRejectsEmptyToken(t *testing.T) {
	m, store, _ := newTestManager()
	w := httptest.NewRecorder()
	_, err := m.Begin(w, httptest.NewRequest(http.MethodPost, "/login", nil), Credential{}, users.User{}, time.Time{})
	require.Error(t, err)
	require.Equal(t, 0, store.Len())
	require.Empty(t, w.Result().Cookies())
}

func TestManager_BeginReplacesPreviousSession(t *testing.T) {
	m, store, _ := newTestManager()
	first := begin(t, m, "t1", "r1")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.AddCookie(first)
	_, err := m.Begin(w, r, Credential{AccessToken: "t2"}, users.User{}, time.Time{})
	require.NoError(t, err)

	require.Equal(t, 1, store.Len())
	require.False(t, m.Load(requestWith(first)).Authenticated())
}

func TestManager_LoadWithoutCookie(t *testing.T) {
	m, _, _ := newTestManager()

	s := m.Load(requestWith(nil))
	require.NotNil(t, s)
	require.False(t, s.Authenticated())

	s = m.Load(requestWith(&http.Cookie{Name: testCookie, Value: "forged"}))
	require.False(t, s.Authenticated())
}

func TestManager_LoadExpired(t *testing.T) {
	m, _, c := newTestManager()
	cookie := begin(t, m, "t1", "r1")

	c.now = testNow.Add(2 * time.Hour)
	require.False(t, m.Load(requestWith(cookie)).Authenticated())
}

func TestManager_End(t *testing.T) {
	m, store, _ := newTestManager()
	cookie := begin(t, m, "t1", "r1")

	w := httptest.NewRecorder()
	require.NoError(t, m.End(w, requestWith(cookie)))
	require.Equal(t, 0, store.Len())

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, testCookie, cleared[0].Name)
	require.Negative(t, cleared[0].MaxAge)

	require.False(t, m.Load(requestWith(cookie)).Authenticated())
}

func TestManager_EndWithoutSession(t *testing.T) {
	m, _, _ := newTestManager()
	w := httptest.NewRecorder()
	require.NoError(t, m.End(w, requestWith(nil)))
}

func TestManager_UpdateCredential(t *testing.T) {
	m, _, _ := newTestManager()
	cookie := begin(t, m, "t1", "r1")
	s := m.Load(requestWith(cookie))

	expiry := testNow.Add(5 * time.Minute)
	require.NoError(t, m.UpdateCredential(context.Background(), s, Credential{AccessToken: "t2"}, expiry))
	require.Equal(t, "t2", s.AccessToken())
	require.Equal(t, "r1", s.RefreshToken(), "empty refresh token keeps the stored one")

	reloaded := m.Load(requestWith(cookie))
	require.Equal(t, "t2", reloaded.AccessToken())
	require.True(t, reloaded.AccessExpiry().Equal(expiry))

	require.Error(t, m.UpdateCredential(context.Background(), &Session{}, Credential{AccessToken: "x"}, time.Time{}))
}

func TestManager_Middleware(t *testing.T) {
	m, _, _ := newTestManager()
	cookie := begin(t, m, "t1", "r1")

	var seen *Session
	h := m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})
	h(httptest.NewRecorder(), requestWith(cookie))

	require.NotNil(t, seen)
	require.Equal(t, "t1", seen.AccessToken())
}

func TestFromContext_Empty(t *testing.T) {
	s := FromContext(context.Background())
	require.NotNil(t, s)
	require.False(t, s.Authenticated())

	var nilSession *Session
	require.Equal(t, "", nilSession.AccessToken())
	require.Equal(t, users.User{}, nilSession.User())
}

func TestManager_SecureCookieBehindProxy(t *testing.T) {
	m, _, _ := newTestManager()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	_, err := m.Begin(w, r, Credential{AccessToken: "t1"}, users.User{}, time.Time{})
	require.NoError(t, err)
	require.True(t, w.Result().Cookies()[0].Secure)
}
