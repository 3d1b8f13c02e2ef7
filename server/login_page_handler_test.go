package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccessStartsSession(t *testing.T) {
	var body map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		loginOK("access-1")(w, r)
	})
	h := newHarness(t, mux)

	w := h.post(RouteLogin, url.Values{"email": {"alice@uni.edu"}, "password": {"secret1"}}, nil)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RouteDashboard, w.Header().Get("Location"))
	assert.Equal(t, map[string]string{"email": "alice@uni.edu", "password": "secret1"}, body)
	assert.Equal(t, 1, h.store.Len())

	cookie := sessionCookie(t, w)
	r := httptest.NewRequest(http.MethodGet, RouteDashboard, nil)
	r.AddCookie(cookie)
	sess := h.server.sessions.Load(r)
	assert.Equal(t, "access-1", sess.AccessToken())
	assert.Equal(t, "refresh-1", sess.RefreshToken())
	assert.Equal(t, "Alice", sess.User().FirstName)
	assert.Equal(t, users.RoleAdmin, sess.User().Role)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	page := h.get(RouteDashboard, cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Welcome, Alice!")
	assert.Contains(t, page.Body.String(), "Admin")
}

func TestLoginInvalidCredentialsStaysOnPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})
	h := newHarness(t, mux)

	w := h.post(RouteLogin, url.Values{"email": {"alice@uni.edu"}, "password": {"wrong"}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), `value="alice@uni.edu"`)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 0, h.store.Len())
}

func TestLoginFailureWithoutDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	h := newHarness(t, mux)

	w := h.post(RouteLogin, url.Values{"email": {"alice@uni.edu"}, "password": {"pw"}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), loginFailedMessage)
	assert.Equal(t, 0, h.store.Len())
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{name: "missing email", form: url.Values{"password": {"pw"}}, want: "Email is required"},
		{name: "bad email", form: url.Values{"email": {"nope"}, "password": {"pw"}}, want: "Enter a valid email address"},
		{name: "missing password", form: url.Values{"email": {"a@uni.edu"}}, want: "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)

			w := h.post(RouteLogin, tt.form, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Equal(t, int32(0), h.apiCalls.Load())
		})
	}
}

func TestLoginReturnsToNext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, loginOK("access-1"))
	h := newHarness(t, mux)

	page := h.get("/login?next=%2Fprofile", nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `name="next" value="/profile"`)

	w := h.post(RouteLogin, url.Values{"email": {"alice@uni.edu"}, "password": {"pw"}, "next": {"/profile"}}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RouteProfile, w.Header().Get("Location"))
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, loginOK("access-1"))
	h := newHarness(t, mux)

	w := h.post(RouteLogin, url.Values{"email": {"alice@uni.edu"}, "password": {"pw"}, "next": {"//evil.example/"}}, nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RouteDashboard, w.Header().Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, loginOK("access-1"))
	h := newHarness(t, mux)
	cookie := h.login()
	require.Equal(t, 1, h.store.Len())

	w := h.post(RouteLogout, nil, cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RouteLogin, w.Header().Get("Location"))
	assert.Equal(t, 0, h.store.Len())

	after := h.get(RouteDashboard, cookie)
	assert.Equal(t, http.StatusSeeOther, after.Code)
}

func TestLogoutRequiresPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiclient.PathLogin, loginOK("access-1"))
	h := newHarness(t, mux)
	cookie := h.login()

	w := h.get(RouteLogout, cookie)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, http.StatusOK, h.get(RouteDashboard, cookie).Code)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/dashboard", "/dashboard"},
		{"/profile?tab=1", "/profile?tab=1"},
		{"", ""},
		{"https://evil.example/", ""},
		{"//evil.example/", ""},
		{"/\\evil.example/", ""},
		{"/login", ""},
		{"/login?next=%2Fdashboard", ""},
		{"/logout", ""},
		{"/register", ""},
		{"/loginhelp", "/loginhelp"},
		{"/login/sso", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNext(tt.next), tt.next)
	}
}
